package commands

import (
	"errors"
	"strconv"
	"strings"
)

type Operation int

const (
	DEFAULT = iota
	// Start mining, loops until explicit cancel.
	START
	// Restart mining on a fresh candidate.
	RESTART
	// Stop mining completely.
	STOP
	// Create and submit a transaction from the loaded wallet.
	SEND
	// Print the balance of own or a given address.
	BALANCE
	// Print own wallet address.
	ADDRESS
	// Print transaction history for the wallet address.
	HISTORY
	// List pending transactions in the pool.
	PENDING
	// Show the most recent blocks of the chain.
	SHOW
	// Lock the wallet, discarding the in-memory private key.
	LOCK
	// Unlock the wallet with the password.
	UNLOCK
	// Save the chain snapshot to a file.
	SAVE
	// Load a chain snapshot from a file.
	LOAD
)

// A command contains an operation and its arguments.
type Command struct {
	Op   Operation
	Args []string
}

func isUint(s string) bool {
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

func (c Command) IsValid() bool {
	switch c.Op {
	case START, RESTART, STOP, ADDRESS, PENDING:
		return len(c.Args) == 0
	case SEND:
		// send <recipient> <amount> <fee> [message...]
		if len(c.Args) < 3 {
			return false
		}
		return isUint(c.Args[1]) && isUint(c.Args[2])
	case BALANCE:
		return len(c.Args) <= 1
	case HISTORY:
		if len(c.Args) == 0 {
			return true
		}
		return len(c.Args) == 1 && isUint(c.Args[0])
	case SHOW:
		return len(c.Args) == 1 && isUint(c.Args[0])
	case LOCK, UNLOCK:
		return len(c.Args) == 1
	case SAVE, LOAD:
		return len(c.Args) == 1
	default:
		return false
	}
}

// CreateCommand parses a raw input line into a Command.
func CreateCommand(s string) (Command, error) {
	ss := strings.Fields(s)
	if len(ss) == 0 {
		return Command{}, errors.New("command is empty")
	}
	cmd := Command{}
	switch ss[0] {
	case "start":
		cmd.Op = START
	case "restart":
		cmd.Op = RESTART
	case "stop":
		cmd.Op = STOP
	case "send":
		cmd.Op = SEND
	case "balance":
		cmd.Op = BALANCE
	case "address":
		cmd.Op = ADDRESS
	case "history":
		cmd.Op = HISTORY
	case "pending":
		cmd.Op = PENDING
	case "show":
		cmd.Op = SHOW
	case "lock":
		cmd.Op = LOCK
	case "unlock":
		cmd.Op = UNLOCK
	case "save":
		cmd.Op = SAVE
	case "load":
		cmd.Op = LOAD
	}
	cmd.Args = ss[1:]
	if !cmd.IsValid() {
		return Command{}, errors.New("invalid command")
	}
	return cmd, nil
}

// NewDefaultCommand creates a brand new command with the default operation.
func NewDefaultCommand() Command {
	return Command{
		Op: DEFAULT,
	}
}

func (c Command) IsDefault() bool {
	return c.Op == DEFAULT
}
