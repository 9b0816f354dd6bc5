// Package launch turns raw process arguments into a running application.
//
// It owns the small, fixed contract between the command line and whatever
// application sits behind it:
//
//   - Parse converts argv into an immutable ParsedOptions record. Unknown
//     flags and stray positional arguments are ignored.
//   - ConfigFromOptions derives the AppConfig handed to the application.
//     Only the verbose flag is forwarded; input and output are parsed but
//     stay at this layer.
//   - Run constructs the application through a Factory and drives its single
//     blocking Execute call, returning the outcome as an error value.
//   - Report applies an outcome to a process: it writes failures to the error
//     stream and maps them to exit code 1.
//
// Nothing in this package calls os.Exit; cmd/nexus is the only place that
// terminates the process.
package launch
