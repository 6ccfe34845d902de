package emulator

import "math"

// Keeps track of the emulation time
type TimeHandler struct {
	// Keeps track of the current execution time. It is measured in
	// the CPU clock at 33.8685MHz (~29.525960700946ns)
	Cycles     uint64
	TimeSheets []*TimeSheet
}

// Represents a TimeSheet index. Peripherals that need a lazily-evaluated
// notion of "how long since I last looked at the clock" register one of
// these, instead of going through the Scheduler (which is for discrete
// one-shot events, not continuous counters)
type Peripheral uint32

const (
	PERIPHERAL_GPU       Peripheral = iota // Graphics Processing Unit
	PERIPHERAL_TIMER0                      // Timer 0 (GPU pixel clock / sysclock)
	PERIPHERAL_TIMER1                      // Timer 1 (GPU hblank / sysclock)
	PERIPHERAL_TIMER2                      // Timer 2 (sysclock / sysclock/8)
	PERIPHERAL_PADMEMCARD                  // Controller/memory card serial port
	PERIPHERAL_SPU                         // Sound Processing Unit mixer
	PERIPHERAL_COUNT                       // Not a real peripheral, sizes the TimeSheets slice
)

// Returns a new instance of TimeHandler
func NewTimeHandler() *TimeHandler {
	sheets := make([]*TimeSheet, PERIPHERAL_COUNT)
	for i := range sheets {
		sheets[i] = NewTimeSheet()
	}
	return &TimeHandler{TimeSheets: sheets}
}

// Advance the current time by `cycles`
func (th *TimeHandler) Tick(cycles uint64) {
	th.Cycles += cycles
}

// Synchronizes a peripheral
func (th *TimeHandler) Sync(from Peripheral) uint64 {
	return th.TimeSheets[from].Sync(th.Cycles)
}

func (th *TimeHandler) SetNextSyncDelta(from Peripheral, delta uint64) {
	th.TimeSheets[from].NextSync = th.Cycles + delta
}

// Removes the next forced synchronization for a peripheral (it becomes
// unbounded until something calls SetNextSyncDelta again)
func (th *TimeHandler) RemoveNextSync(from Peripheral) {
	th.TimeSheets[from].NextSync = math.MaxUint64
}

// Returns true if the peripheral reached the time of the next forced
// synchronization
func (th *TimeHandler) NeedsSync(from Peripheral) bool {
	return th.TimeSheets[from].NeedsSync(th.Cycles)
}

// Keeps track of synchronization of different peripherals
type TimeSheet struct {
	LastSync uint64 // Time of the last synchronization
	NextSync uint64 // Date of the next synchronization
}

// Returns a new TimeSheet instance
func NewTimeSheet() *TimeSheet {
	return &TimeSheet{NextSync: math.MaxUint64}
}

// Set the time sheet to the current time and return the time
// since the last synchronization
func (sheet *TimeSheet) Sync(cycles uint64) uint64 {
	delta := cycles - sheet.LastSync
	sheet.LastSync = cycles
	return delta
}

// Returns true if the peripheral reached `NextSync`
func (sheet *TimeSheet) NeedsSync(cycles uint64) bool {
	return sheet.NextSync <= cycles
}

// Fixed-point cycle counter used to track sub-cycle phase for clock
// sources that don't divide evenly into the system clock (GPU dotclock,
// hsync). 16 fractional bits.
type FracCycles uint64

const fracCyclesShift = 16

func FracCyclesFromFixed(fixed uint64) FracCycles {
	return FracCycles(fixed)
}

func FracCyclesFromCycles(cycles uint64) FracCycles {
	return FracCycles(cycles << fracCyclesShift)
}

func FracCyclesFromF32(value float32) FracCycles {
	return FracCycles(uint64(value * (1 << fracCyclesShift)))
}

func (f FracCycles) GetFixed() uint64 {
	return uint64(f)
}

func (f FracCycles) Add(other FracCycles) FracCycles {
	return FracCycles(uint64(f) + uint64(other))
}

// Rounds up to the nearest whole cycle
func (f FracCycles) Ceil() uint64 {
	shifted := uint64(f) >> fracCyclesShift
	if uint64(f)&((1<<fracCyclesShift)-1) != 0 {
		shifted++
	}
	return shifted
}
