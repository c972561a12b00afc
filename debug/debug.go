package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Load     bool
	Annotate bool
	Clark    bool
	Ground   bool
	Enum     bool
}

var d *debug

func init() {
	d = &debug{}
	d.Load = boolEnv("FODOT_DEBUG_LOAD")
	d.Annotate = boolEnv("FODOT_DEBUG_ANNOTATE")
	d.Clark = boolEnv("FODOT_DEBUG_CLARK")
	d.Ground = boolEnv("FODOT_DEBUG_GROUND")
	d.Enum = boolEnv("FODOT_DEBUG_ENUM")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Load() bool {
	return d.Load
}
func Annotate() bool {
	return d.Annotate
}
func Clark() bool {
	return d.Clark
}
func Ground() bool {
	return d.Ground
}
func Enum() bool {
	return d.Enum
}

