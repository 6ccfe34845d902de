package emulator

// Global interconnect. It stores all of the peripherals and routes CPU
// loads/stores to the right one depending on the address
type Interconnect struct {
	Bios       *BIOS       // Basic input/output memory
	Ram        *RAM        // Main RAM
	ScratchPad *ScratchPad // Fast 1KB scratchpad RAM
	DMA        *DMA        // DMA controller
	GPU        *GPU        // Graphics Processing Unit
	CdRom      *CdRom      // CD-ROM controller
	Timers     *Timers     // The 3 hardware timers
	PadMemCard *PadMemCard // Gamepad/memory card serial port
	SPU        *SPU        // Sound Processing Unit
	IrqState   *IrqState   // Interrupt controller
	TimeHandler *TimeHandler // Lazy-sync clock shared by the GPU/timers/pad/SPU
	Scheduler   *Scheduler   // Discrete one-shot event queue (CDROM command sequencing, ...)

	CacheControl CacheControl // Cache control register
}

// Creates a new interconnect instance wiring up every peripheral
func NewInterconnect(bios *BIOS) *Interconnect {
	scheduler := NewScheduler()
	irqState := NewIrqState()
	inter := &Interconnect{
		Bios:        bios,
		Ram:         NewRAM(),
		ScratchPad:  NewScratchPad(),
		DMA:         NewDMA(),
		GPU:         NewGPU(),
		CdRom:       NewCdRom(scheduler, irqState),
		Timers:      NewTimers(),
		PadMemCard:  NewPadMemCard(),
		SPU:         NewSPU(),
		IrqState:    irqState,
		TimeHandler: NewTimeHandler(),
		Scheduler:   scheduler,
	}
	return inter
}

// Advances every lazily-synced peripheral and drains the scheduler by
// `cycles` CPU cycles. Called once per executed instruction: the CPU runs
// first (the caller already did that), then the timer/GPU/pad time sheets
// are brought up to date, then the scheduler fires anything now due
// (matching the core's single ordering guarantee: CPU, then sync, then
// scheduler drain, within every quantum)
func (inter *Interconnect) Tick(cycles uint64) {
	inter.TimeHandler.Tick(cycles)
	inter.Timers.Sync(inter.TimeHandler, inter.IrqState)
	inter.GPU.Sync(inter.TimeHandler, inter.IrqState)
	inter.PadMemCard.Sync(inter.TimeHandler, inter.IrqState)
	inter.SPU.Sync(inter.TimeHandler)
	inter.Scheduler.ProcessEvents(int64(cycles))
}

// Masks a CPU address, stripping the KSEG0/KSEG1 segment bits so that
// cached and uncached mirrors of the same region resolve identically
func maskRegion(addr uint32) uint32 {
	regionMasks := [8]uint32{
		// KUSEG: 2GB
		0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff,
		// KSEG0: 512MB, cached
		0x7fffffff,
		// KSEG1: 512MB, uncached
		0x1fffffff,
		// KSEG2: 1GB
		0xffffffff, 0xffffffff,
	}
	index := addr >> 29
	return addr & regionMasks[index]
}

// Generic load dispatcher. `val` is returned as uint8/uint16/uint32
// depending on `size`
func (inter *Interconnect) Load(addr uint32, size AccessSize) interface{} {
	if addr%uint32(size) != 0 {
		panicFmt("interconnect: unaligned load32 address 0x%x", addr)
	}

	abs := maskRegion(addr)

	if SCRATCHPAD_RANGE.Contains(abs) {
		return inter.ScratchPad.Load(SCRATCHPAD_RANGE.Offset(abs), size)
	}
	if RAM_RANGE.Contains(abs) {
		return inter.Ram.Load(RAM_RANGE.Offset(abs), size)
	}
	if BIOS_RANGE.Contains(abs) {
		offset := BIOS_RANGE.Offset(abs)
		switch size {
		case ACCESS_BYTE:
			return inter.Bios.Load8(offset)
		case ACCESS_HALFWORD:
			return uint16(inter.Bios.Load32(offset&^3) >> ((offset & 3) * 8))
		default:
			return inter.Bios.Load32(offset)
		}
	}
	if IRQ_CONTROL.Contains(abs) {
		offset := IRQ_CONTROL.Offset(abs)
		switch offset {
		case 0:
			return accessSizeU32(size, uint32(inter.IrqState.Status))
		case 4:
			return accessSizeU32(size, uint32(inter.IrqState.Mask))
		default:
			panicFmt("interconnect: unhandled IRQ load at offset %d", offset)
		}
	}
	if DMA_RANGE.Contains(abs) {
		return accessSizeU32(size, inter.dmaReg(DMA_RANGE.Offset(abs)))
	}
	if GPU_RANGE.Contains(abs) {
		offset := GPU_RANGE.Offset(abs)
		switch offset {
		case 0:
			return accessSizeU32(size, inter.GPU.Read())
		case 4:
			inter.GPU.Sync(inter.TimeHandler, inter.IrqState)
			return accessSizeU32(size, inter.GPU.Status())
		default:
			panicFmt("interconnect: unhandled GPU load at offset %d", offset)
		}
	}
	if TIMERS_RANGE.Contains(abs) {
		return inter.Timers.Load(size, inter.TimeHandler, TIMERS_RANGE.Offset(abs), inter.IrqState)
	}
	if CDROM_RANGE.Contains(abs) {
		if size == ACCESS_WORD {
			v := uint32(inter.CdRom.Load(ACCESS_BYTE, CDROM_RANGE.Offset(abs)))
			v |= uint32(inter.CdRom.Load(ACCESS_BYTE, CDROM_RANGE.Offset(abs)+1)) << 8
			v |= uint32(inter.CdRom.Load(ACCESS_BYTE, CDROM_RANGE.Offset(abs)+2)) << 16
			v |= uint32(inter.CdRom.Load(ACCESS_BYTE, CDROM_RANGE.Offset(abs)+3)) << 24
			return v
		}
		return inter.CdRom.Load(size, CDROM_RANGE.Offset(abs))
	}
	if PADMEMCARD_RANGE.Contains(abs) {
		return inter.PadMemCard.Load(inter.TimeHandler, inter.IrqState, PADMEMCARD_RANGE.Offset(abs), size)
	}
	if SPU_RANGE.Contains(abs) {
		return inter.SPU.Load(SPU_RANGE.Offset(abs), size)
	}
	if EXPANSION_1.Contains(abs) {
		// no expansion device is plugged in; all reads return 0xff
		return accessSizeU32(size, 0xffffffff)
	}
	if MEM_CONTROL.Contains(abs) || RAM_SIZE.Contains(abs) || CACHE_CONTROL.Contains(abs) {
		return accessSizeU32(size, 0)
	}

	panicFmt("interconnect: unhandled load at address 0x%x", addr)
	return uint32(0)
}

func (inter *Interconnect) Load32(addr uint32) uint32 {
	return inter.Load(addr, ACCESS_WORD).(uint32)
}

func (inter *Interconnect) Load16(addr uint32) uint16 {
	return inter.Load(addr, ACCESS_HALFWORD).(uint16)
}

func (inter *Interconnect) Load8(addr uint32) uint8 {
	return inter.Load(addr, ACCESS_BYTE).(uint8)
}

// Generic store dispatcher
func (inter *Interconnect) Store(addr uint32, size AccessSize, val interface{}) {
	if addr%uint32(size) != 0 {
		panicFmt("interconnect: unaligned store address 0x%x", addr)
	}

	abs := maskRegion(addr)

	if SCRATCHPAD_RANGE.Contains(abs) {
		inter.ScratchPad.Store(SCRATCHPAD_RANGE.Offset(abs), size, val)
		return
	}
	if RAM_RANGE.Contains(abs) {
		inter.Ram.Store(RAM_RANGE.Offset(abs), size, val)
		return
	}
	if IRQ_CONTROL.Contains(abs) {
		offset := IRQ_CONTROL.Offset(abs)
		v := accessSizeToU32(size, val)
		switch offset {
		case 0:
			inter.IrqState.Acknowledge(uint16(v))
		case 4:
			inter.IrqState.SetMask(uint16(v))
		default:
			panicFmt("interconnect: unhandled IRQ store at offset %d", offset)
		}
		return
	}
	if DMA_RANGE.Contains(abs) {
		inter.SetDmaReg(DMA_RANGE.Offset(abs), accessSizeToU32(size, val))
		return
	}
	if GPU_RANGE.Contains(abs) {
		offset := GPU_RANGE.Offset(abs)
		v := accessSizeToU32(size, val)
		switch offset {
		case 0:
			inter.GPU.GP0(v)
		case 4:
			inter.GPU.GP1(v)
		default:
			panicFmt("interconnect: unhandled GPU store at offset %d", offset)
		}
		return
	}
	if TIMERS_RANGE.Contains(abs) {
		inter.Timers.Store(size, val, inter.TimeHandler, TIMERS_RANGE.Offset(abs), inter.GPU, inter.IrqState)
		return
	}
	if CDROM_RANGE.Contains(abs) {
		offset := CDROM_RANGE.Offset(abs)
		if size == ACCESS_WORD {
			v := accessSizeToU32(size, val)
			inter.CdRom.Store(offset, ACCESS_BYTE, uint8(v))
			return
		}
		inter.CdRom.Store(offset, size, accessSizeToU8(size, val))
		return
	}
	if PADMEMCARD_RANGE.Contains(abs) {
		inter.PadMemCard.Store(PADMEMCARD_RANGE.Offset(abs), val, size, inter.TimeHandler, inter.IrqState)
		return
	}
	if SPU_RANGE.Contains(abs) {
		inter.SPU.Store(SPU_RANGE.Offset(abs), size, val)
		return
	}
	if EXPANSION_2.Contains(abs) || EXPANSION_1.Contains(abs) {
		return
	}
	if MEM_CONTROL.Contains(abs) {
		offset := MEM_CONTROL.Offset(abs)
		v := accessSizeToU32(size, val)
		switch offset {
		case 0:
			if v != 0x1f000000 {
				panicFmt("interconnect: bad expansion 1 base address 0x%x", v)
			}
		case 4:
			if v != 0x1f802000 {
				panicFmt("interconnect: bad expansion 2 base address 0x%x", v)
			}
		default:
			// the other MEM_CONTROL registers configure bus timings, ignored
		}
		return
	}
	if RAM_SIZE.Contains(abs) {
		return
	}
	if CACHE_CONTROL.Contains(abs) {
		inter.CacheControl = CacheControl(accessSizeToU32(size, val))
		return
	}

	panicFmt("interconnect: unhandled store at address 0x%x", addr)
}

func (inter *Interconnect) Store32(addr, val uint32) {
	inter.Store(addr, ACCESS_WORD, val)
}

func (inter *Interconnect) Store16(addr uint32, val uint16) {
	inter.Store(addr, ACCESS_HALFWORD, val)
}

func (inter *Interconnect) Store8(addr uint32, val uint8) {
	inter.Store(addr, ACCESS_BYTE, val)
}

// Reads a DMA register (channel or top-level control)
func (inter *Interconnect) dmaReg(offset uint32) uint32 {
	major := (offset & 0x70) >> 4
	minor := offset & 0xf

	if major <= 6 {
		channel := inter.DMA.Channels[major]
		switch minor {
		case 0:
			return channel.Base
		case 4:
			return channel.BlockControl()
		case 8:
			return channel.Control()
		default:
			panicFmt("dma: unhandled channel register read %d", minor)
		}
	}

	switch major {
	case 7:
		switch minor {
		case 0:
			return inter.DMA.Control
		case 4:
			return inter.DMA.Interrupt()
		}
	}

	panicFmt("dma: unhandled register read at offset 0x%x", offset)
	return 0
}

// Writes a DMA register, running the transfer synchronously if the
// write activates a channel
func (inter *Interconnect) SetDmaReg(offset uint32, val uint32) {
	major := (offset & 0x70) >> 4
	minor := offset & 0xf

	var activePort Port = PORT_OTC
	active := false

	if major <= 6 {
		port := PortFromIndex(major)
		channel := inter.DMA.Channels[major]

		switch minor {
		case 0:
			channel.SetBase(val)
		case 4:
			channel.SetBlockControl(val)
		case 8:
			channel.SetControl(val)
		default:
			panicFmt("dma: unhandled channel register write %d <- 0x%x", minor, val)
		}

		if channel.Active() {
			activePort = port
			active = true
		}
	} else {
		switch major {
		case 7:
			switch minor {
			case 0:
				inter.DMA.SetControl(val)
			case 4:
				inter.DMA.SetInterrupt(val)
			default:
				panicFmt("dma: unhandled register write at offset 0x%x <- 0x%x", offset, val)
			}
		default:
			panicFmt("dma: unhandled register write at offset 0x%x <- 0x%x", offset, val)
		}
	}

	if active {
		inter.RunDmaTransfer(activePort)
	}
}

// Executes a DMA transfer for `port`, moving data synchronously between
// RAM and the target peripheral
func (inter *Interconnect) RunDmaTransfer(port Port) {
	channel := inter.DMA.Channels[port]

	if channel.Sync == SYNC_LINKED_LIST {
		inter.runDmaLinkedList(port)
	} else {
		inter.runDmaBlock(port)
	}

	channel.Done()
	inter.raiseDmaIrqIfNeeded(port)
}

func (inter *Interconnect) raiseDmaIrqIfNeeded(port Port) {
	bit := uint8(1) << uint(port)
	if inter.DMA.ChannelIrqEn&bit != 0 {
		inter.DMA.ChannelIrqFlags |= bit
	}
	if inter.DMA.Irq() {
		inter.IrqState.SetHigh(INTERRUPT_DMA)
	}
}

func (inter *Interconnect) runDmaBlock(port Port) {
	channel := inter.DMA.Channels[port]

	var step int32 = 4
	if channel.Step == STEP_DECREMENT {
		step = -4
	}

	addr := channel.Base
	_, remsize := channel.TransferSize()

	for remsize > 0 {
		curAddr := addr & 0x1ffffc

		switch channel.Direction {
		case DIRECTION_FROM_RAM:
			srcWord := inter.Ram.Load32(curAddr)
			inter.dmaSendToPort(port, srcWord)
		case DIRECTION_TO_RAM:
			var srcWord uint32
			switch port {
			case PORT_OTC:
				if remsize == 1 {
					srcWord = 0xffffff
				} else {
					srcWord = (addr - 4) & 0x1fffff
				}
			case PORT_GPU:
				srcWord = inter.GPU.Read()
			default:
				srcWord = 0
			}
			inter.Ram.Store32(curAddr, srcWord)
		}

		addr = uint32(int32(addr) + step)
		remsize--
	}
}

func (inter *Interconnect) runDmaLinkedList(port Port) {
	channel := inter.DMA.Channels[port]

	if channel.Direction != DIRECTION_FROM_RAM {
		panic("dma: linked list mode only makes sense for RAM to peripheral transfers")
	}
	if port != PORT_GPU {
		panicFmt("dma: attempted linked list DMA on port other than GPU (%d)", port)
	}

	addr := channel.Base & 0x1ffffc

	for {
		header := inter.Ram.Load32(addr)
		remsize := header >> 24

		for remsize > 0 {
			addr = (addr + 4) & 0x1ffffc
			command := inter.Ram.Load32(addr)
			inter.GPU.GP0(command)
			remsize--
		}

		if header&0x800000 != 0 {
			break
		}
		addr = header & 0x1ffffc
	}
}

// Sends a single word read from RAM to the peripheral addressed by `port`
func (inter *Interconnect) dmaSendToPort(port Port, word uint32) {
	switch port {
	case PORT_GPU:
		inter.GPU.GP0(word)
	case PORT_SPU:
		addr := inter.SPU.DataTransferAddr
		if int(addr)+3 < len(inter.SPU.Ram) {
			inter.SPU.Ram[addr] = byte(word)
			inter.SPU.Ram[addr+1] = byte(word >> 8)
			inter.SPU.Ram[addr+2] = byte(word >> 16)
			inter.SPU.Ram[addr+3] = byte(word >> 24)
		}
		inter.SPU.DataTransferAddr += 4
	case PORT_MDEC_IN, PORT_MDEC_OUT, PORT_CDROM, PORT_PIO:
		// unmodeled targets simply discard the word
	default:
		panicFmt("dma: unhandled DMA destination port %d", port)
	}
}
