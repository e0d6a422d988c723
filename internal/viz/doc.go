// Package viz renders a live terminal view of a running gas simulation.
//
// The package implements an interactive TUI using the Bubble Tea
// framework:
//
//   - [Model]: live simulation view driven at a fixed frame rate
//   - [Canvas]: braille pixel canvas for the 3D box render
//   - [Camera], [Render3D]: rotating perspective projection
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset (rebuilds the engine with the same seed)
//	E     - Toggle speed/energy histogram
//	A     - Toggle live/accumulated histogram source
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// The G key records the canvas into gaslab.gif in the current
// directory, one frame per tick until toggled off.
package viz
