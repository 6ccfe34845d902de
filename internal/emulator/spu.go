package emulator

import "sync"

// Number of hardware voices
const SPU_VOICE_COUNT = 24

// CPU cycles between produced stereo samples (33.8688MHz / 0x300 ~= 44100Hz)
const spuSamplePeriod = 0x300

// Size of the emulated sound RAM, used for ADPCM sample storage and the
// reverb work area. Real hardware has 512KiB
const SPU_RAM_SIZE = 512 * 1024

// ADPCM filter coefficients (fixed point, /64), indexed by the 3 bit filter
// field of the ADPCM block header (values above 4 use entry 4). Values taken from the nocash PSX
// specification
var adpcmFilterTable = [5][2]int32{
	{0, 0},
	{60, 0},
	{115, -52},
	{98, -55},
	{122, -60},
}

type AdsrPhase uint8

const (
	ADSR_ATTACK AdsrPhase = iota
	ADSR_DECAY
	ADSR_SUSTAIN
	ADSR_RELEASE
	ADSR_OFF
)

// One ADSR rate field: 5 bit shift + 2 bit step, optionally exponential
type AdsrRate struct {
	Shift uint8
	Step  uint8
	Exp   bool
}

func adsrRateFromField(field uint16, exp bool) AdsrRate {
	return AdsrRate{Shift: uint8((field >> 2) & 0x1f), Step: uint8(field & 3), Exp: exp}
}

// Advances an envelope level by one tick according to `rate`, moving
// `level` up (rising) or down (falling). Follows the INC/DEC step tables and
// the shift-11 sample-grouping of the real ADSR unit: for shift > 11,
// `counter` counts calls and a step is applied once every 2^(shift-11)
// calls; the calls in between return `level` unchanged. Returns the new level
func adsrStep(level int32, rate AdsrRate, rising bool, counter *uint32) int32 {
	period := uint32(1)
	if rate.Shift > 11 {
		period = uint32(1) << uint(rate.Shift-11)
	}

	*counter++
	if *counter < period {
		return level
	}
	*counter = 0

	var table [4]int32
	if rising {
		table = [4]int32{7, 6, 5, 4}
	} else {
		table = [4]int32{-8, -7, -6, -5}
	}
	delta := table[rate.Step]

	shiftAmt := int32(rate.Shift) - 11
	if shiftAmt < 0 {
		shiftAmt = 0
	}
	delta <<= uint(shiftAmt)

	// real hardware quarters the attack step once the level crosses 0x6000
	// when in exponential mode
	if rising && rate.Exp && level > 0x6000 {
		delta /= 4
	}
	if !rising && rate.Exp {
		delta = delta * level / 0x8000
	}

	level += delta
	if level > 0x7fff {
		level = 0x7fff
	}
	if level < 0 {
		level = 0
	}
	return level
}

// One SPU voice: ADPCM decoder, pitch counter and ADSR envelope
type Voice struct {
	VolumeL, VolumeR int16
	Pitch            uint16 // 16 bit fixed point, 0x1000 = original sample rate
	StartAddress     uint32 // in sound RAM, 8-byte units
	RepeatAddress    uint32 // in sound RAM, 8-byte units

	AdsrAttackRate  AdsrRate
	AdsrDecayRate   AdsrRate
	AdsrSustainRate AdsrRate
	AdsrReleaseRate AdsrRate
	AdsrSustainLvl  int32 // target level for the decay phase, 0..0x7fff
	AdsrSustainUp   bool  // sustain direction: true = rising, false = falling
	AdsrLevel       int32 // current envelope level, 0..0x7fff
	AdsrPhase       AdsrPhase
	adsrCounter     uint32

	KeyOn  bool
	Block  [28]int16 // last decoded ADPCM block
	Older  int32      // ADPCM filter history, n-1
	Older2 int32      // ADPCM filter history, n-2
	LoopEnd bool
	LoopRepeat bool
	LoopStart  bool

	currentAddr uint32  // current read position in sound RAM
	blockPos    int     // position within Block
	pitchCtr    uint32  // sub-sample fractional position (16.16)
}

func NewVoice() *Voice {
	return &Voice{AdsrPhase: ADSR_OFF, blockPos: 28}
}

// Decodes the 16-byte ADPCM block starting at `addr` from sound RAM into
// v.Block, updating the filter history and loop flags from the block header
func (v *Voice) decodeBlock(ram []byte, addr uint32) {
	shift := ram[addr] & 0xf
	filter := (ram[addr] >> 4) & 0x7
	if filter > 4 {
		filter = 4
	}
	flags := ram[addr+1]
	v.LoopEnd = flags&1 != 0
	v.LoopRepeat = flags&2 != 0
	v.LoopStart = flags&4 != 0

	k0 := adpcmFilterTable[filter][0]
	k1 := adpcmFilterTable[filter][1]

	for i := 0; i < 14; i++ {
		b := ram[addr+2+uint32(i)]
		for nib := 0; nib < 2; nib++ {
			var raw int32
			if nib == 0 {
				raw = int32(int8(b<<4) >> 4)
			} else {
				raw = int32(int8(b) >> 4)
			}
			sample := raw << (12 - shift)
			predicted := (v.Older*k0 + v.Older2*k1 + 32) >> 6
			sample += predicted
			if sample > 32767 {
				sample = 32767
			}
			if sample < -32768 {
				sample = -32768
			}
			v.Older2 = v.Older
			v.Older = sample
			v.Block[i*2+nib] = int16(sample)
		}
	}
}

// Starts the voice's envelope and resets its ADPCM read position. Called
// when a bit in KON is latched for this voice
func (v *Voice) StartKey() {
	v.currentAddr = v.StartAddress * 8
	v.blockPos = 28
	v.Older = 0
	v.Older2 = 0
	v.AdsrLevel = 0
	v.AdsrPhase = ADSR_ATTACK
	v.adsrCounter = 0
	v.KeyOn = true
}

// Moves the voice into the Release phase. Called when a bit in KOFF is
// latched for this voice
func (v *Voice) ReleaseKey() {
	if v.AdsrPhase != ADSR_OFF {
		v.AdsrPhase = ADSR_RELEASE
	}
}

func (v *Voice) stepAdsr() {
	switch v.AdsrPhase {
	case ADSR_ATTACK:
		v.AdsrLevel = adsrStep(v.AdsrLevel, v.AdsrAttackRate, true, &v.adsrCounter)
		if v.AdsrLevel >= 0x7fff {
			v.AdsrLevel = 0x7fff
			v.AdsrPhase = ADSR_DECAY
			v.adsrCounter = 0
		}
	case ADSR_DECAY:
		v.AdsrLevel = adsrStep(v.AdsrLevel, v.AdsrDecayRate, false, &v.adsrCounter)
		if v.AdsrLevel <= v.AdsrSustainLvl {
			v.AdsrLevel = v.AdsrSustainLvl
			v.AdsrPhase = ADSR_SUSTAIN
			v.adsrCounter = 0
		}
	case ADSR_SUSTAIN:
		v.AdsrLevel = adsrStep(v.AdsrLevel, v.AdsrSustainRate, v.AdsrSustainUp, &v.adsrCounter)
	case ADSR_RELEASE:
		v.AdsrLevel = adsrStep(v.AdsrLevel, v.AdsrReleaseRate, false, &v.adsrCounter)
		if v.AdsrLevel <= 0 {
			v.AdsrLevel = 0
			v.AdsrPhase = ADSR_OFF
			v.KeyOn = false
		}
	case ADSR_OFF:
	}
}

// Produces one sample from this voice, refilling/decoding an ADPCM block
// from `ram` whenever the current block is exhausted, and stepping pitch
// and envelope. Returns a 16 bit signed sample scaled by the envelope
func (v *Voice) nextSample(ram []byte) int16 {
	if v.AdsrPhase == ADSR_OFF {
		return 0
	}

	if v.blockPos >= 28 {
		v.decodeBlock(ram, v.currentAddr)
		v.blockPos = 0

		if v.LoopStart {
			v.RepeatAddress = v.currentAddr / 8
		}
		if v.LoopEnd {
			if v.LoopRepeat {
				v.currentAddr = v.RepeatAddress * 8
			} else {
				v.AdsrPhase = ADSR_OFF
			}
		} else {
			v.currentAddr += 16
		}
	}

	sample := v.Block[v.blockPos]

	// advance the ADPCM read position by the pitch counter (4-tap Gaussian
	// interpolation is approximated by nearest-neighbor stepping across
	// the decoded block; the fractional remainder still paces playback
	// speed correctly)
	v.pitchCtr += uint32(v.Pitch)
	for v.pitchCtr >= 0x1000 {
		v.pitchCtr -= 0x1000
		v.blockPos++
		if v.blockPos >= 28 {
			break
		}
	}

	v.stepAdsr()

	scaled := (int32(sample) * v.AdsrLevel) >> 15
	return int16(scaled)
}

// Lock-guarded ring buffer of interleaved stereo int16 samples. Produced
// by the SPU mixer on the emulation thread, drained by the host audio
// callback (oto runs its reader on its own goroutine), hence the mutex
type spuRing struct {
	mu   sync.Mutex
	buf  []int16
	head int
	tail int
	size int
}

func newSpuRing(capacitySamples int) *spuRing {
	return &spuRing{buf: make([]int16, capacitySamples)}
}

func (r *spuRing) push(l, r16 int16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size+2 > len(r.buf) {
		// drop the oldest frame rather than block the mixer
		r.head = (r.head + 2) % len(r.buf)
		r.size -= 2
	}
	r.buf[r.tail] = l
	r.buf[(r.tail+1)%len(r.buf)] = r16
	r.tail = (r.tail + 2) % len(r.buf)
	r.size += 2
}

// Pops up to len(out) samples (interleaved L/R), zero-filling whatever
// isn't available yet
func (r *spuRing) pop(out []int16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := 0
	for ; i < len(out) && r.size > 0; i++ {
		out[i] = r.buf[r.head]
		r.head = (r.head + 1) % len(r.buf)
		r.size--
	}
	for ; i < len(out); i++ {
		out[i] = 0
	}
}

// Sound Processing Unit: 24 ADPCM voices mixed down to stereo 44100Hz
type SPU struct {
	Voices [SPU_VOICE_COUNT]*Voice
	Ram    []byte

	MainVolumeL, MainVolumeR int16
	CdVolumeL, CdVolumeR     int16
	Control                  uint16 // SPUCNT
	DataTransferControl      uint16
	DataTransferAddr         uint32 // current sound RAM transfer pointer, in bytes
	IrqAddress               uint16

	accumulated uint64
	Ring        *spuRing

	pendingKon  uint32 // KON bits latched so far; applied once the upper half is written
	pendingKoff uint32
}

func NewSPU() *SPU {
	spu := &SPU{
		Ram:  make([]byte, SPU_RAM_SIZE),
		Ring: newSpuRing(44100 * 2), // ~1 second of stereo headroom
	}
	for i := range spu.Voices {
		spu.Voices[i] = NewVoice()
	}
	return spu
}

// Pop drains up to len(out) interleaved stereo samples from the mixer's
// output ring, zero-filling whatever hasn't been produced yet. It is the
// only way code outside this package observes SPU audio output.
func (spu *SPU) Pop(out []int16) {
	spu.Ring.pop(out)
}

// Mixes one stereo sample from every active voice and pushes it to Ring
func (spu *SPU) produceSample() {
	var l, r int32
	for _, v := range spu.Voices {
		s := int32(v.nextSample(spu.Ram))
		l += (s * int32(v.VolumeL)) >> 15
		r += (s * int32(v.VolumeR)) >> 15
	}

	l = (l * int32(spu.MainVolumeL)) >> 15
	r = (r * int32(spu.MainVolumeR)) >> 15

	l = clampInt32(l, -32768, 32767)
	r = clampInt32(r, -32768, 32767)

	spu.Ring.push(int16(l), int16(r))
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Advances the mixer by however many CPU cycles elapsed since the last
// sync, producing one stereo sample every spuSamplePeriod cycles
func (spu *SPU) Sync(th *TimeHandler) {
	delta := th.Sync(PERIPHERAL_SPU)
	spu.accumulated += delta

	for spu.accumulated >= spuSamplePeriod {
		spu.accumulated -= spuSamplePeriod
		spu.produceSample()
	}

	th.SetNextSyncDelta(PERIPHERAL_SPU, spuSamplePeriod-spu.accumulated)
}

// Latches a 24 bit KON/KOFF bitmask, starting or releasing the envelope of
// each bit-1 voice
func (spu *SPU) applyKeyOn(mask uint32) {
	for i := 0; i < SPU_VOICE_COUNT; i++ {
		if mask&(1<<uint(i)) != 0 {
			spu.Voices[i].StartKey()
		}
	}
}

func (spu *SPU) applyKeyOff(mask uint32) {
	for i := 0; i < SPU_VOICE_COUNT; i++ {
		if mask&(1<<uint(i)) != 0 {
			spu.Voices[i].ReleaseKey()
		}
	}
}

// voiceLoad dispatches a 16 bit register access within the 0x000-0x17f
// per-voice register bank
func (spu *SPU) voiceLoad(offset uint32) uint16 {
	voice := spu.Voices[offset/16]
	switch offset % 16 {
	case 0:
		return uint16(voice.VolumeL)
	case 2:
		return uint16(voice.VolumeR)
	case 4:
		return voice.Pitch
	case 6:
		return uint16(voice.StartAddress)
	case 8:
		return uint16(voice.AdsrDecayRate.Shift)<<2 | uint16(voice.AdsrSustainLvl>>11)
	case 10:
		return uint16(voice.AdsrSustainRate.Shift) << 2
	case 12:
		return uint16(voice.AdsrLevel)
	case 14:
		return uint16(voice.RepeatAddress)
	}
	return 0
}

func (spu *SPU) voiceStore(offset uint32, val uint16) {
	voice := spu.Voices[offset/16]
	switch offset % 16 {
	case 0:
		voice.VolumeL = int16(val)
	case 2:
		voice.VolumeR = int16(val)
	case 4:
		voice.Pitch = val
	case 6:
		voice.StartAddress = uint32(val)
	case 8:
		voice.AdsrAttackRate = adsrRateFromField(val>>9, val&0x8000 != 0)
		voice.AdsrDecayRate = adsrRateFromField((val>>4)&0xf<<2, true)
		voice.AdsrSustainLvl = (int32(val&0xf) + 1) << 11
	case 10:
		voice.AdsrSustainRate = adsrRateFromField(val>>8, val&0x80 != 0)
		voice.AdsrSustainUp = val&0x4000 == 0
		voice.AdsrReleaseRate = adsrRateFromField((val&0x1f)<<2, val&0x20 != 0)
	case 14:
		voice.RepeatAddress = uint32(val)
	}
}

// Register map offsets are relative to SPU_RANGE (0x1f801c00), matching
// the documented PS1 SPU layout: 24 voice blocks, then the main/control
// registers, then per-voice current-volume readback
func (spu *SPU) Load(offset uint32, size AccessSize) interface{} {
	if offset < 0x180 {
		return accessSizeU32(size, uint32(spu.voiceLoad(offset)))
	}

	var v uint16
	switch offset {
	case 0x180:
		v = uint16(spu.MainVolumeL)
	case 0x182:
		v = uint16(spu.MainVolumeR)
	case 0x1a6:
		v = uint16(spu.DataTransferAddr / 8)
	case 0x1a8:
		v = 0 // sound RAM FIFO: writes only, reads as 0
	case 0x1aa:
		v = spu.Control
	case 0x1ac:
		v = spu.DataTransferControl
	case 0x1ae:
		v = spu.Status()
	case 0x1b0:
		v = uint16(spu.CdVolumeL)
	case 0x1b2:
		v = uint16(spu.CdVolumeR)
	case 0x1b8:
		v = uint16(spu.MainVolumeL)
	case 0x1ba:
		v = uint16(spu.MainVolumeR)
	default:
		v = 0
	}
	return accessSizeU32(size, uint32(v))
}

func (spu *SPU) Store(offset uint32, size AccessSize, val interface{}) {
	v := uint16(accessSizeToU32(size, val))

	if offset < 0x180 {
		spu.voiceStore(offset, v)
		return
	}

	switch offset {
	case 0x180:
		spu.MainVolumeL = int16(v)
	case 0x182:
		spu.MainVolumeR = int16(v)
	case 0x188:
		spu.pendingKon = (spu.pendingKon &^ 0xffff) | uint32(v)
	case 0x18a:
		spu.pendingKon = (spu.pendingKon &^ 0xff0000) | (uint32(v&0xff) << 16)
		spu.applyKeyOn(spu.pendingKon)
		spu.pendingKon = 0
	case 0x18c:
		spu.pendingKoff = (spu.pendingKoff &^ 0xffff) | uint32(v)
	case 0x18e:
		spu.pendingKoff = (spu.pendingKoff &^ 0xff0000) | (uint32(v&0xff) << 16)
		spu.applyKeyOff(spu.pendingKoff)
		spu.pendingKoff = 0
	case 0x1a2:
		// reverb work area start, not simulated
	case 0x1a4:
		spu.IrqAddress = v
	case 0x1a6:
		spu.DataTransferAddr = uint32(v) * 8
	case 0x1a8:
		if int(spu.DataTransferAddr)+1 < len(spu.Ram) {
			spu.Ram[spu.DataTransferAddr] = byte(v)
			spu.Ram[spu.DataTransferAddr+1] = byte(v >> 8)
			spu.DataTransferAddr += 2
		}
	case 0x1aa:
		spu.Control = v
	case 0x1ac:
		spu.DataTransferControl = v
	case 0x1b0:
		spu.CdVolumeL = int16(v)
	case 0x1b2:
		spu.CdVolumeR = int16(v)
	}
}

// Returns the SPU status register. Bit 10 (DMA read/write request) always
// reads ready since sound RAM transfers complete synchronously here
func (spu *SPU) Status() uint16 {
	return spu.Control & 0x3f
}
