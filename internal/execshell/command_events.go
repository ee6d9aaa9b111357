package execshell

// CommandEventObserver receives lifecycle notifications for git invocations.
type CommandEventObserver interface {
	// CommandStarted notifies observers that a process is about to be spawned.
	CommandStarted(command CommandDescriptor)
	// CommandCompleted reports a process that exited on its own, with any exit code.
	CommandCompleted(command CommandDescriptor, outcome Outcome)
	// CommandExecutionFailed reports invocations that ended without a natural exit: spawn
	// failures, cancellation, decode failures and output limits.
	CommandExecutionFailed(command CommandDescriptor, failure error)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

// CommandStarted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandStarted(CommandDescriptor) {}

// CommandCompleted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandCompleted(CommandDescriptor, Outcome) {}

// CommandExecutionFailed implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandExecutionFailed(CommandDescriptor, error) {}
