package emulator

import "fmt"

// IrqCode and its values (IRQ_CODE_SECTOR_READY, IRQ_CODE_DONE,
// IRQ_CODE_OK, IRQ_CODE_ERROR) are defined in cdrom.utils.go

// CPU cycles between a command write and its INT3 acknowledge, shared by
// every command (the per-command timings below only govern what happens
// after the initial acknowledge)
const cdromAckDelay = TIMING_COMMAND_PENDING

// CD-ROM controller. Commands are not executed synchronously: writing the
// command register starts a sub-CPU sequence (see cdrom.subcpu.go) which
// the scheduler advances, delivering INT3 only after `cdromAckDelay`
// cycles have actually elapsed
type CdRom struct {
	Index    uint8 // Some registers can change depending on the index
	Params   *FIFO // FIFO storing the command arguments
	Response *FIFO // FIFO storing command responses
	IrqMask  uint8 // 5 bit interrupt mask
	IrqFlags uint8 // 5 bit interrupt flags

	SubCpu    *SubCpu
	scheduler *Scheduler
	irqState  *IrqState
	eventID   uint64
	asyncID   uint64

	Disc        *Disc  // backing disc image, nil if the tray is empty
	DoubleSpeed bool   // true = 150 sectors/sec, false = 75 sectors/sec
	MotorOn     bool   // true once the drive has spun up
	Position    Msf    // current head position
	SeekTarget  Msf    // target of a pending SetLoc/SeekL
	Rand        *Xorshift32
}

func NewCdRom(scheduler *Scheduler, irqState *IrqState) *CdRom {
	cdrom := &CdRom{
		Params:    NewFIFO(),
		Response:  NewFIFO(),
		SubCpu:    NewSubCpu(),
		scheduler: scheduler,
		irqState:  irqState,
		Rand:      NewXorshift32(0xcafef00d),
	}
	cdrom.eventID = scheduler.RegisterEvent(cdrom.onCommandDue)
	cdrom.asyncID = scheduler.RegisterEvent(cdrom.onAsyncDue)
	return cdrom
}

// Small deterministic PRNG used only to jitter seek-time estimates the way
// CalcSeekTime's source material does; not a security primitive, and not
// stdlib math/rand so that replays stay bit-identical across Go versions
type Xorshift32 struct {
	state uint32
}

func NewXorshift32(seed uint32) *Xorshift32 {
	if seed == 0 {
		seed = 1
	}
	return &Xorshift32{state: seed}
}

func (x *Xorshift32) Next() uint32 {
	x.state ^= x.state << 13
	x.state ^= x.state >> 17
	x.state ^= x.state << 5
	return x.state
}

func (cdrom *CdRom) Status() uint8 {
	r := cdrom.Index

	// https://problemkaputt.de/psx-spx.htm#cdromcontrollerioports
	// TODO: XA-ADPCM fifo empty
	r |= 0 << 2
	r |= uint8(oneIfTrue(cdrom.Params.IsEmpty())) << 3
	r |= uint8(oneIfTrue(cdrom.Params.IsFull())) << 4
	r |= uint8(oneIfTrue(cdrom.Response.IsEmpty())) << 5
	// TODO: Data fifo empty
	r |= 0 << 6
	r |= uint8(oneIfTrue(cdrom.SubCpu.IsBusy())) << 7

	return r
}

func (cdrom *CdRom) Irq() bool {
	return cdrom.IrqFlags&cdrom.IrqMask != 0
}

// Raises an IRQ code, unless one is already pending and unacknowledged
func (cdrom *CdRom) TriggerIrq(irq IrqCode) {
	if cdrom.IrqFlags != 0 {
		panic("cdrom: nested interrupt")
	}
	cdrom.IrqFlags = uint8(irq)
}

func (cdrom *CdRom) SetIndex(index uint8) {
	cdrom.Index = index & 3
}

func (cdrom *CdRom) AcknowledgeIrq(val uint8) {
	cdrom.IrqFlags &= ^val

	// the IRQ acknowledge rule means the next queued response only
	// becomes visible now: if an async response finished waiting and the
	// flags are clear, deliver it immediately
	if cdrom.IrqFlags == 0 && cdrom.SubCpu.AsyncResponse.IsReady() &&
		!cdrom.scheduler.HasEvent(cdrom.asyncID) {
		cdrom.deliverAsyncResponse()
	}
}

func (cdrom *CdRom) SetIrqMask(val uint8) {
	cdrom.IrqMask = val & 0x1f
}

func (cdrom *CdRom) CommandGetStat() {
	if !cdrom.Params.IsEmpty() {
		panic("cdrom: invalid parameters for GetStat")
	}

	// FIXME: for now, just pretend that the CD tray is open
	cdrom.Response.Push(0x10)
	cdrom.TriggerIrq(IRQ_CODE_OK)
}

func (cdrom *CdRom) CommandTest() {
	if cdrom.Params.Length() != 1 {
		panicFmt(
			"cdrom: invalid number of parameters for Test (expected 1, got %d)",
			cdrom.Params.Length(),
		)
	}

	cmd := cdrom.Params.Pop()
	switch cmd {
	case 0x20:
		cdrom.TestVersion()
	default:
		panicFmt("cdrom: unhandled Test command 0x%x", cmd)
	}
}

func (cdrom *CdRom) TestVersion() {
	// values taken from Mednafen
	cdrom.Response.Push(0x97) // year
	cdrom.Response.Push(0x01) // month
	cdrom.Response.Push(0x10) // day
	cdrom.Response.Push(0xc2) // version
	cdrom.TriggerIrq(IRQ_CODE_OK)
}

// GetID (1Ah): identifies the inserted disc. A licensed disc's full ID
// string is delivered in the first response already; a real drive splits
// this across INT3 (status) and a later INT2/INT5, but the controller
// hardware only ever exposes one response FIFO at a time either way
func (cdrom *CdRom) CommandGetID() {
	if !cdrom.Params.IsEmpty() {
		panic("cdrom: invalid parameters for GetID")
	}

	stat := uint8(0x02) // motor on, no error
	cdrom.Response.Push(stat)
	cdrom.Response.Push(0x02)
	cdrom.Response.Push(0x00)
	cdrom.Response.Push(0x20)
	cdrom.Response.Push(0x00)
	cdrom.Response.Push('M')
	cdrom.Response.Push('A')
	cdrom.Response.Push('R')
	cdrom.Response.Push('I')
	cdrom.TriggerIrq(IRQ_CODE_OK)

	// the command-complete pulse only becomes visible once software
	// acknowledges the response above AND TIMING_GET_ID_ASYNC cycles have
	// actually elapsed; it carries no further data
	cdrom.SubCpu.ScheduleAsyncResponse(func() uint32 {
		return uint32(IRQ_CODE_DONE)
	}, 0)
	cdrom.scheduler.AddEvent(cdrom.asyncID, 0, int64(TIMING_GET_ID_ASYNC))
}

// SetLoc (02h): latches a target MSF for the next SeekL/ReadN. Takes
// effect immediately; it does not itself move the head
func (cdrom *CdRom) CommandSetLoc() {
	if cdrom.Params.Length() != 3 {
		panicFmt(
			"cdrom: invalid number of parameters for SetLoc (expected 3, got %d)",
			cdrom.Params.Length(),
		)
	}

	m := cdrom.Params.Pop()
	s := cdrom.Params.Pop()
	f := cdrom.Params.Pop()
	cdrom.SeekTarget = MsfFromBcd(m, s, f)

	cdrom.Response.Push(cdrom.driveStat())
	cdrom.TriggerIrq(IRQ_CODE_OK)
}

// SeekL (15h): physically moves the head to the last SetLoc target, at
// data-track (non-audio) precision. The immediate response only reports
// that the seek started; completion arrives asynchronously once
// CalcSeekTime's estimate actually elapses
func (cdrom *CdRom) CommandSeekL() {
	if !cdrom.Params.IsEmpty() {
		panic("cdrom: invalid parameters for SeekL")
	}

	delay := cdrom.CalcSeekTime(
		cdrom.Position.SectorIndex(),
		cdrom.SeekTarget.SectorIndex(),
		cdrom.MotorOn,
		false,
	)
	cdrom.MotorOn = true

	cdrom.Response.Push(cdrom.driveStat())
	cdrom.TriggerIrq(IRQ_CODE_OK)

	cdrom.SubCpu.ScheduleAsyncResponse(func() uint32 {
		cdrom.Position = cdrom.SeekTarget
		return uint32(IRQ_CODE_DONE)
	}, 0)
	cdrom.scheduler.AddEvent(cdrom.asyncID, 0, int64(delay))
}

// Pause (09h): stops streaming. Per the controller's IRQ acknowledge
// rule, pausing drops every CDROM event still in flight, including a
// seek or read that has not completed yet
func (cdrom *CdRom) CommandPause() {
	if !cdrom.Params.IsEmpty() {
		panic("cdrom: invalid parameters for Pause")
	}

	cdrom.scheduler.RemoveEvent(cdrom.asyncID)
	cdrom.SubCpu.AsyncResponse.Reset()

	cdrom.Response.Push(cdrom.driveStat())
	cdrom.TriggerIrq(IRQ_CODE_OK)

	cdrom.SubCpu.ScheduleAsyncResponse(func() uint32 {
		return uint32(IRQ_CODE_DONE)
	}, 0)
	cdrom.scheduler.AddEvent(cdrom.asyncID, 0, int64(TIMING_PAUSE_RX_PUSH))
}

// Drive status byte shared by SetLoc/SeekL/Pause responses
func (cdrom *CdRom) driveStat() uint8 {
	var stat uint8
	if cdrom.MotorOn {
		stat |= 1 << 1
	}
	return stat
}

func (cdrom *CdRom) PushParam(param uint8) {
	if cdrom.Params.IsFull() {
		panic("cdrom: attempted to push param to full FIFO")
	}
	cdrom.Params.Push(param)
}

// Starts a command: stages it on the sub-CPU and lets the scheduler
// deliver its INT3 after cdromAckDelay cycles actually elapse, instead of
// running it synchronously on the write
func (cdrom *CdRom) Command(cmd uint8) {
	cdrom.SubCpu.StartCommand(cdromAckDelay)
	cdrom.scheduler.AddEvent(cdrom.eventID, int32(cmd), int64(cdromAckDelay))
}

// Scheduler callback: runs the staged command and pushes its response,
// exactly `cdromAckDelay` cycles after Command() staged it
func (cdrom *CdRom) onCommandDue(param int32, overshoot int64) {
	cmd := uint8(param)
	cdrom.SubCpu.Sequence = SUBCPU_EXECUTION
	cdrom.Response.Clear()

	switch cmd {
	case 0x01:
		cdrom.CommandGetStat()
	case 0x02:
		cdrom.CommandSetLoc()
	case 0x09:
		cdrom.CommandPause()
	case 0x15:
		cdrom.CommandSeekL()
	case 0x19:
		cdrom.CommandTest()
	case 0x1a:
		cdrom.CommandGetID()
	default:
		panicFmt("cdrom: unhandled command 0x%x", cmd)
	}

	cdrom.Params.Clear()
	cdrom.SubCpu.Sequence = SUBCPU_IDLE

	if cdrom.SubCpu.AsyncResponse.IsReady() && cdrom.IrqFlags == 0 {
		cdrom.deliverAsyncResponse()
	}
}

// Delivers a scheduled async response (the second, INT2/INT5 stage of a
// command) once the prior response has been acknowledged
func (cdrom *CdRom) deliverAsyncResponse() {
	handler := cdrom.SubCpu.AsyncResponse.Handler
	cdrom.SubCpu.AsyncResponse.Reset()
	cdrom.TriggerIrq(IrqCode(handler()))
}

// Scheduler callback kept for responses that genuinely need to wait out a
// delay (sector streaming, seeks) rather than just an ACK gate
func (cdrom *CdRom) onAsyncDue(param int32, overshoot int64) {
	if cdrom.IrqFlags == 0 {
		cdrom.deliverAsyncResponse()
	}
}

func (cdrom *CdRom) Load(size AccessSize, offset uint32) uint8 {
	if size != ACCESS_BYTE {
		panicFmt("cdrom: tried to load %d bytes (expected %d)", size, ACCESS_BYTE)
	}

	index := cdrom.Index

	switch offset {
	case 0:
		return cdrom.Status()
	case 1:
		if cdrom.Response.IsEmpty() {
			fmt.Println("cdrom: response FIFO is empty!")
		}
		return cdrom.Response.Pop()
	case 3:
		switch index {
		case 1:
			return cdrom.IrqFlags
		default:
			panic("cdrom: not implemented")
		}
	default:
		panic("cdrom: not implemented")
	}
}

func (cdrom *CdRom) Store(offset uint32, size AccessSize, val uint8) {
	if size != ACCESS_BYTE {
		panicFmt("cdrom: tried to store %d bytes (expected %d)", size, ACCESS_BYTE)
	}

	index := cdrom.Index
	prevIrq := cdrom.Irq()

	switch offset {
	case 0:
		cdrom.SetIndex(val)
	case 1:
		switch index {
		case 0:
			cdrom.Command(val)
		default:
			panic("cdrom: not implemented")
		}
	case 2:
		switch index {
		case 0:
			cdrom.PushParam(val)
		case 1:
			cdrom.SetIrqMask(val)
		default:
			panic("cdrom: not implemented")
		}
	case 3:
		switch index {
		case 1:
			cdrom.AcknowledgeIrq(val & 0x1f)
			if val&0x40 != 0 {
				cdrom.Params.Clear()
			}
			if val&0xa0 != 0 {
				panic("cdrom: not implemented")
			}
		default:
			panic("cdrom: not implemented")
		}
	default:
		panic("cdrom: not implemented")
	}

	if !prevIrq && cdrom.Irq() {
		cdrom.irqState.SetHigh(INTERRUPT_CDROM)
	}
}
