package emulator

type Exception uint32

const (
	EXCEPTION_INTERRUPT           Exception = 0x0 // Interrupt
	EXCEPTION_LOAD_ADDRESS_ERROR  Exception = 0x4 // Address error on load
	EXCEPTION_STORE_ADDRESS_ERROR Exception = 0x5 // Address error on store
	EXCEPTION_BUS_ERROR_INSTR     Exception = 0x6 // Bus error while fetching an instruction
	EXCEPTION_BUS_ERROR_DATA      Exception = 0x7 // Bus error on a data load/store
	EXCEPTION_SYSCALL             Exception = 0x8 // System call (caused by the SYSCALL opcode)
	EXCEPTION_BREAK               Exception = 0x9 // Breakpoint (caused by BREAK opcode)
	EXCEPTION_ILLEGAL_INSTRUCTION Exception = 0xa // CPU encountered an unknown instruction
	EXCEPTION_COPROCESSOR_ERROR   Exception = 0xb // Unsupported coprocessor operation
	EXCEPTION_OVERFLOW            Exception = 0xc // Arithmetic overflow
)
