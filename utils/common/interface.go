package common

import "context"

type CommandExecutor interface {
	RunCommand(name string, args ...string) ([]byte, error)
	RunInteractiveCommand(ctx context.Context, name string, args ...string) error
	LookPath(file string) (string, error)
}
