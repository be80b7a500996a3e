package common

import (
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	clihelpers "gitlab.com/gitlab-org/golang-cli-helpers"
)

var commands []cli.Command

// Commander executes the command with the cli.Context.
type Commander interface {
	Execute(c *cli.Context)
}

// CommanderFunc allows the registration of commands without having to explicitly implement
// the Commander interface for simple functions.
type CommanderFunc func(*cli.Context)

// Execute provides default implementation for Commander interface.
func (cf CommanderFunc) Execute(c *cli.Context) {
	cf(c)
}

// NewCommand constructs a command with the given name, usage, and flags.
// Flags are derived from the struct tags of data.
func NewCommand(name, usage string, data Commander, flags ...cli.Flag) cli.Command {
	return cli.Command{
		Name:   name,
		Usage:  usage,
		Action: data.Execute,
		Flags:  append(flags, clihelpers.GetFlagsFromStruct(data)...),
	}
}

// RegisterCommand registers a command for the application to pick up with
// GetCommands.
func RegisterCommand(command cli.Command) {
	logrus.Debugln("Registering", command.Name, "command...")
	commands = append(commands, command)
}

// RegisterCommand2 registers a command built from the name, usage and data
// provided.
func RegisterCommand2(name, usage string, data Commander, flags ...cli.Flag) {
	RegisterCommand(NewCommand(name, usage, data, flags...))
}

func GetCommands() []cli.Command {
	return commands
}
