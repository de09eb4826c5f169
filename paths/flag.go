package paths

import (
	"flag"
)

// FilePathVar defines a string flag on fs for a data file. Its default is
// whatever Find reports for fileName, so tools work without flags inside a
// data directory. An empty usage becomes "Path to <fileName>".
func FilePathVar(fs *flag.FlagSet, p *string, flagName, fileName, usage string) {
	if usage == "" {
		usage = "Path to " + fileName
	}
	fs.StringVar(p, flagName, Find(fileName), usage)
}

// SetupFilePathFlag is FilePathVar on the program's command line.
func SetupFilePathFlag(fileName, flagName string, flagPtr *string) {
	FilePathVar(flag.CommandLine, flagPtr, flagName, fileName, "")
}
