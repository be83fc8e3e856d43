package flicker

import "time"

// DefaultExecutor runs Task commands in their own goroutine and After
// commands on a timer, delivering each result back through deliver. It
// implements CommandExecutor and is the executor Runtime wires by
// default; applications needing real I/O executors (network calls,
// subprocess commands) provide their own CommandExecutor instead.
type DefaultExecutor struct{}

// Execute implements CommandExecutor.
func (DefaultExecutor) Execute(origin ComponentID, cmd Command, deliver func(ComponentID, Message)) {
	switch c := cmd.(type) {
	case Task:
		go func() {
			msg := c.Run()
			deliver(origin, msg)
		}()
	case After:
		go func() {
			time.Sleep(c.Delay)
			deliver(origin, c.Msg)
		}()
	}
}
