package generate

import (
	"fmt"

	"github.com/gofrs/flock"
)

// outputLock is an advisory lock held while a run writes one output path.
type outputLock struct {
	path string
	lock *flock.Flock
}

func acquireOutputLock(output string) (*outputLock, error) {
	path := output + ".lock"
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, usageErrorf("Output is already being generated by another run: %s", output)
	}
	return &outputLock{path: path, lock: lock}, nil
}

// release unlocks the output. The lock file stays in place: unlinking it
// would let a run that already opened the old file lock it while another run
// locks a freshly created one.
func (l *outputLock) release() error {
	if l == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release output lock: %w", err)
	}
	return nil
}
