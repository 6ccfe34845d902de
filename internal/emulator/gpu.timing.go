package emulator

// GPU-side scanline/dotclock timing. Split into its own file to keep one
// concern per file (see cdrom.timings.go).
//
// The GPU clock runs close to 53.69MHz (NTSC), i.e. 11/7 times the CPU
// clock. One scanline is counted as 3413 CPU cycles on NTSC (3406 on PAL);
// the dotclock itself is further divided down depending on the current
// horizontal resolution. None of this is simulated pixel-by-pixel: the GPU
// lazily resolves how many scanlines/dots have passed whenever something
// (a timer read, a VBLANK poll) forces a Sync.

const (
	gpuCyclesPerLineNtsc = 3413 // CPU cycles per scanline, NTSC
	gpuCyclesPerLinePal  = 3406 // CPU cycles per scanline, PAL
	gpuLinesPerFrameNtsc = 263  // total scanlines per frame, NTSC
	gpuLinesPerFramePal  = 314  // total scanlines per frame, PAL
	gpuVblankStartNtsc   = 240  // first scanline of vertical blanking, NTSC
	gpuVblankStartPal    = 288  // first scanline of vertical blanking, PAL
)

// Per-HRes dotclock divider, indexed by HorizontalRes value (0-7, see
// HResFromFields: bit 0 is hr2, bits [2:1] are hr1)
var dotclockDividers = [8]uint64{
	10, // 256px (hr1=0)
	7,  // 368px (hr2=1)
	8,  // 320px (hr1=1)
	7,  // 368px (hr2=1)
	5,  // 512px (hr1=2)
	7,  // 368px (hr2=1)
	4,  // 640px (hr1=3)
	7,  // 368px (hr2=1)
}

func (gpu *GPU) linesPerFrame() uint16 {
	if gpu.VMode == VMODE_PAL {
		return gpuLinesPerFramePal
	}
	return gpuLinesPerFrameNtsc
}

func (gpu *GPU) cyclesPerLine() uint64 {
	if gpu.VMode == VMODE_PAL {
		return gpuCyclesPerLinePal
	}
	return gpuCyclesPerLineNtsc
}

func (gpu *GPU) vblankStartLine() uint16 {
	if gpu.VMode == VMODE_PAL {
		return gpuVblankStartPal
	}
	return gpuVblankStartNtsc
}

// Period of one dotclock tick, in CPU-cycle fixed point
func (gpu *GPU) DotclockPeriod() FracCycles {
	return FracCyclesFromCycles(dotclockDividers[gpu.HRes&7])
}

func (gpu *GPU) DotclockPhase() FracCycles {
	return FracCyclesFromFixed(0)
}

// Period of one scanline, in CPU-cycle fixed point
func (gpu *GPU) HSyncPeriod() FracCycles {
	return FracCyclesFromCycles(gpu.cyclesPerLine())
}

func (gpu *GPU) HSyncPhase() FracCycles {
	return FracCyclesFromFixed(0)
}

// Advances the scanline/field state by however many CPU cycles have
// elapsed since the last GPU sync, raising VBLANK when the scanline
// counter crosses into the blanking region
func (gpu *GPU) Sync(th *TimeHandler, irqState *IrqState) {
	delta := th.Sync(PERIPHERAL_GPU)
	if delta == 0 {
		return
	}

	gpu.lineProgress += delta
	cyclesPerLine := gpu.cyclesPerLine()

	for gpu.lineProgress >= cyclesPerLine {
		gpu.lineProgress -= cyclesPerLine
		gpu.currentLine++

		if gpu.currentLine == gpu.vblankStartLine() {
			gpu.inVblank = true
			irqState.SetHigh(INTERRUPT_VBLANK)
		}

		if gpu.currentLine >= gpu.linesPerFrame() {
			gpu.currentLine = 0
			gpu.inVblank = false
			if gpu.Interlaced {
				gpu.Field = FIELD_TOP ^ gpu.Field
			}
		}
	}
}
