package emulator

import "testing"

// Builds a blank CPU with a zeroed BIOS, attached to a real Interconnect so
// instructions can be staged directly in RAM (address 0 and up) and fetched
// normally through cpu.PC.
func newTestCPU() *CPU {
	bios := &BIOS{Data: make([]byte, BIOS_SIZE)}
	inter := NewInterconnect(bios)
	cpu := NewCPU(inter)
	cpu.PC = 0
	cpu.NextPC = 4
	return cpu
}

func testEncodeI(opcode, s, t, imm uint32) uint32 {
	return (opcode << 26) | (s << 21) | (t << 16) | (imm & 0xffff)
}

func testEncodeR(funct, s, t, d, shamt uint32) uint32 {
	return (s << 21) | (t << 16) | (d << 11) | (shamt << 6) | funct
}

func testLoadProgram(cpu *CPU, words []uint32) {
	for i, w := range words {
		cpu.Inter.Ram.Store32(uint32(i*4), w)
	}
}

func TestLoadDelaySlot(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	cpu := newTestCPU()
	cpu.Inter.Ram.Store32(0x40, 0xdeadbeef)

	testLoadProgram(cpu, []uint32{
		testEncodeI(0x09, 0, 1, 0x40),       // ADDIU r1, r0, 0x40
		testEncodeI(0x23, 1, 2, 0),          // LW r2, 0(r1)
		testEncodeR(0x21, 2, 0, 3, 0),        // ADDU r3, r2, r0 (delay slot of the load)
		testEncodeR(0x21, 2, 0, 4, 0),        // ADDU r4, r2, r0
	})

	for i := 0; i < 4; i++ {
		cpu.RunNextInstruction()
	}

	assert(cpu.Reg(1) == 0x40)
	// r3 captured r2 before the load completed: still the register file's
	// initial garbage value (NewCPU seeds Regs[i] = i)
	assert(cpu.Reg(3) == 2)
	// r4 sees the loaded value, one instruction later
	assert(cpu.Reg(4) == 0xdeadbeef)
}

func TestBranchDelaySlot(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	cpu := newTestCPU()

	testLoadProgram(cpu, []uint32{
		testEncodeI(0x09, 0, 1, 5),        // ADDIU r1, r0, 5
		testEncodeI(0x04, 0, 0, 2),        // BEQ r0, r0, 2 (always taken)
		testEncodeI(0x09, 0, 2, 0xaaaa),    // ADDIU r2, r0, 0xaaaa (delay slot, always runs)
		testEncodeI(0x09, 0, 3, 0xbbbb),    // ADDIU r3, r0, 0xbbbb (skipped over by the branch)
		testEncodeI(0x09, 0, 4, 0xcccc),    // ADDIU r4, r0, 0xcccc (branch target)
	})

	for i := 0; i < 4; i++ {
		cpu.RunNextInstruction()
	}

	assert(cpu.Reg(1) == 5)
	assert(cpu.Reg(2) == 0xffffaaaa) // sign extended immediate
	assert(cpu.Reg(3) == 3)          // untouched, still the initial garbage value
	assert(cpu.Reg(4) == 0xffffcccc)
}

func TestAddOverflowException(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	cpu := newTestCPU()

	testLoadProgram(cpu, []uint32{
		testEncodeI(0x0f, 0, 1, 0x7fff),      // LUI r1, 0x7fff
		testEncodeI(0x0d, 1, 1, 0xffff),      // ORI r1, r1, 0xffff -> r1 = 0x7fffffff
		testEncodeI(0x09, 0, 2, 1),           // ADDIU r2, r0, 1
		testEncodeR(0x20, 1, 2, 3, 0),         // ADD r3, r1, r2 (overflows)
	})

	for i := 0; i < 4; i++ {
		cpu.RunNextInstruction()
	}

	assert(cpu.Reg(1) == 0x7fffffff)
	// r3 was never written: the ADD raised an exception instead
	assert(cpu.Reg(3) == 3)
	assert((cpu.Cop0.Cause>>2)&0x1f == uint32(EXCEPTION_OVERFLOW))
	assert(cpu.PC == 0x80000080)
}

func TestAddiuNoOverflowException(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	cpu := newTestCPU()

	testLoadProgram(cpu, []uint32{
		testEncodeI(0x09, 0, 1, 0xffff), // ADDIU r1, r0, -1
		testEncodeI(0x09, 1, 2, 1),      // ADDIU r2, r1, 1 -> wraps to 0, no exception
	})

	for i := 0; i < 2; i++ {
		cpu.RunNextInstruction()
	}

	assert(cpu.Reg(1) == 0xffffffff)
	assert(cpu.Reg(2) == 0)
}
