// Command albumctl inspects a custom album directory outside the game.
//
// It lists the albums the loader would serve, classifies asset names,
// prints the generated manifests and simulates a LoadFromName request
// against an in-memory runtime, driving streaming decode to completion.
package main
