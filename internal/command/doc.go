// Package command validates operator input for the Epicure device and turns
// it into the canonical wire commands published to the broker.
//
// Two command families are understood:
//
//	motor:<steps>:<direction>   steps 0-10000, direction 0 or 1
//	led:<state>                 state on or off (case-insensitive)
//
// Parsing never panics and never returns a partially valid command: the
// result is either a Command whose String() is exactly the wire payload, or
// a *Rejection describing why the input was refused.
//
// # Usage
//
//	cmd, err := command.Parse("MOTOR:50:0")
//	if err != nil {
//	    var rej *command.Rejection
//	    if errors.As(err, &rej) {
//	        fmt.Println(rej.Reason)
//	    }
//	    return
//	}
//	fmt.Println(cmd) // motor:50:0
package command
