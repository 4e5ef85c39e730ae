package config

import (
	"io"
	"os"
)

var stdout io.Writer = os.Stdout
