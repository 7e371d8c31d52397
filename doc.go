// Package life evolves Conway's Game of Life on the GPU.
//
// # Overview
//
// life keeps the cell state in two GPU storage buffers and advances it
// with a compute shader, one dispatch per generation. A render pipeline
// then draws the board as an instanced grid of quads into an offscreen
// color target, which can be read back as an image or presented through
// the GoGPU ecosystem.
//
// The two cell buffers alternate roles every generation (ping-pong
// double buffering): the compute pass reads the buffer the previous
// generation wrote and writes the other one. Bind groups for both
// orientations are created once at startup; generation parity selects
// which one a frame uses.
//
// # Quick Start
//
//	sim, err := life.NewSimulator(life.WithGridSize(32), life.WithSeed(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sim.Close()
//
//	for i := 0; i < 100; i++ {
//		if err := sim.Step(); err != nil {
//			log.Fatal(err)
//		}
//	}
//	frame, err := sim.RenderFrame()
//
// # Continuous Simulation
//
// Runner drives a Simulator on a fixed tick interval until stopped:
//
//	r := life.NewRunner(sim, 500*time.Millisecond)
//	r.OnFrame(func(f *life.Frame, gen uint64) { /* display f */ })
//	err := r.Run(ctx)
//
// # CPU Reference
//
// Grid implements the same B3/S23 rule on the CPU. It seeds the GPU
// buffers, serves as the fallback stepper when no adapter is available,
// and anchors the correctness tests.
package life
