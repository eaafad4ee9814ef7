//go:build windows

package orchcore

import (
	"os"
	"os/exec"
)

// spawnChild is unimplemented on Windows. spec.md documents Windows as out
// of scope for this core by virtue of its pty dependency: a real port
// would substitute an anonymous pipe for stdin and drop the stdin feeder,
// but nothing in this module's scope exercises that path, so it is left
// as an explicit, documented stub rather than a silent behavior change.
func spawnChild(cmd *exec.Cmd) (master *os.File, stdout, stderr *os.File, err error) {
	return nil, nil, nil, ErrUnsupportedPlatform
}
