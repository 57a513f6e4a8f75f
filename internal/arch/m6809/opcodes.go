package m6809

// instructions maps all mnemonics to their descriptions, it is built once at
// package initialization and read-only afterwards.
var instructions = map[string]*Instruction{}

// longBranches maps short branch mnemonics to their long forms.
var longBranches = map[string]string{}

type opcodeDef struct {
	name   string
	prefix byte
	opcode byte
}

var inherentOpcodes = []opcodeDef{
	{"NOP", 0, 0x12}, {"SYNC", 0, 0x13}, {"DAA", 0, 0x19}, {"SEX", 0, 0x1D},
	{"RTS", 0, 0x39}, {"ABX", 0, 0x3A}, {"RTI", 0, 0x3B}, {"MUL", 0, 0x3D},
	{"SWI", 0, 0x3F}, {"SWI2", 0x10, 0x3F}, {"SWI3", 0x11, 0x3F},
}

// accumulator unary operations, the low nibble of the opcode.
var unaryOpcodes = []opcodeDef{
	{"NEG", 0, 0x0}, {"COM", 0, 0x3}, {"LSR", 0, 0x4}, {"ROR", 0, 0x6},
	{"ASR", 0, 0x7}, {"ASL", 0, 0x8}, {"LSL", 0, 0x8}, {"ROL", 0, 0x9},
	{"DEC", 0, 0xA}, {"INC", 0, 0xC}, {"TST", 0, 0xD}, {"CLR", 0, 0xF},
}

var branchOpcodes = []opcodeDef{
	{"BRA", 0, 0x20}, {"BRN", 0, 0x21}, {"BHI", 0, 0x22}, {"BLS", 0, 0x23},
	{"BHS", 0, 0x24}, {"BCC", 0, 0x24}, {"BLO", 0, 0x25}, {"BCS", 0, 0x25},
	{"BNE", 0, 0x26}, {"BEQ", 0, 0x27}, {"BVC", 0, 0x28}, {"BVS", 0, 0x29},
	{"BPL", 0, 0x2A}, {"BMI", 0, 0x2B}, {"BGE", 0, 0x2C}, {"BLT", 0, 0x2D},
	{"BGT", 0, 0x2E}, {"BLE", 0, 0x2F},
}

type memoryDef struct {
	name   string
	prefix byte
	base   byte // immediate opcode, direct/indexed/extended follow in steps of $10
	wide   bool
	noImm  bool
}

var memoryOpcodes = []memoryDef{
	{"SUBA", 0, 0x80, false, false}, {"CMPA", 0, 0x81, false, false},
	{"SBCA", 0, 0x82, false, false}, {"SUBD", 0, 0x83, true, false},
	{"ANDA", 0, 0x84, false, false}, {"BITA", 0, 0x85, false, false},
	{"LDA", 0, 0x86, false, false}, {"STA", 0, 0x87, false, true},
	{"EORA", 0, 0x88, false, false}, {"ADCA", 0, 0x89, false, false},
	{"ORA", 0, 0x8A, false, false}, {"ORAA", 0, 0x8A, false, false},
	{"ADDA", 0, 0x8B, false, false}, {"CMPX", 0, 0x8C, true, false},
	{"JSR", 0, 0x8D, false, true}, {"LDX", 0, 0x8E, true, false},
	{"STX", 0, 0x8F, false, true},

	{"SUBB", 0, 0xC0, false, false}, {"CMPB", 0, 0xC1, false, false},
	{"SBCB", 0, 0xC2, false, false}, {"ADDD", 0, 0xC3, true, false},
	{"ANDB", 0, 0xC4, false, false}, {"BITB", 0, 0xC5, false, false},
	{"LDB", 0, 0xC6, false, false}, {"STB", 0, 0xC7, false, true},
	{"EORB", 0, 0xC8, false, false}, {"ADCB", 0, 0xC9, false, false},
	{"ORB", 0, 0xCA, false, false}, {"ORAB", 0, 0xCA, false, false},
	{"ADDB", 0, 0xCB, false, false}, {"LDD", 0, 0xCC, true, false},
	{"STD", 0, 0xCD, false, true}, {"LDU", 0, 0xCE, true, false},
	{"STU", 0, 0xCF, false, true},

	{"CMPD", 0x10, 0x83, true, false}, {"CMPY", 0x10, 0x8C, true, false},
	{"LDY", 0x10, 0x8E, true, false}, {"STY", 0x10, 0x8F, false, true},
	{"LDS", 0x10, 0xCE, true, false}, {"STS", 0x10, 0xCF, false, true},

	{"CMPU", 0x11, 0x83, true, false}, {"CMPS", 0x11, 0x8C, true, false},
}

func init() {
	for _, def := range inherentOpcodes {
		add(&Instruction{Name: def.name, Class: Inherent, Prefix: def.prefix, Opcode: def.opcode})
	}

	for _, def := range unaryOpcodes {
		add(&Instruction{Name: def.name + "A", Class: Inherent, Opcode: 0x40 | def.opcode})
		add(&Instruction{Name: def.name + "B", Class: Inherent, Opcode: 0x50 | def.opcode})
		add(&Instruction{Name: def.name, Class: Memory, opcodes: map[Mode]byte{
			Direct:   def.opcode,
			Indexed:  0x60 | def.opcode,
			Extended: 0x70 | def.opcode,
		}})
	}
	add(&Instruction{Name: "JMP", Class: Memory, opcodes: map[Mode]byte{
		Direct:   0x0E,
		Indexed:  0x6E,
		Extended: 0x7E,
	}})

	for _, def := range memoryOpcodes {
		ins := &Instruction{Name: def.name, Class: Memory, Prefix: def.prefix, Wide: def.wide,
			opcodes: map[Mode]byte{
				Direct:   def.base + 0x10,
				Indexed:  def.base + 0x20,
				Extended: def.base + 0x30,
			}}
		if !def.noImm {
			ins.opcodes[Immediate] = def.base
		}
		add(ins)
	}

	for _, def := range branchOpcodes {
		add(&Instruction{Name: def.name, Class: Relative, Opcode: def.opcode})
		long := "L" + def.name
		add(&Instruction{Name: long, Class: LongRelative, Prefix: 0x10, Opcode: def.opcode})
		longBranches[def.name] = long
	}
	// the long forms of BRA and BSR have their own page 1 opcodes
	add(&Instruction{Name: "LBRA", Class: LongRelative, Opcode: 0x16})
	add(&Instruction{Name: "BSR", Class: Relative, Opcode: 0x8D})
	add(&Instruction{Name: "LBSR", Class: LongRelative, Opcode: 0x17})
	longBranches["BSR"] = "LBSR"

	add(&Instruction{Name: "ORCC", Class: ImmediateCC, Opcode: 0x1A})
	add(&Instruction{Name: "ANDCC", Class: ImmediateCC, Opcode: 0x1C})
	add(&Instruction{Name: "CWAI", Class: ImmediateCC, Opcode: 0x3C})

	add(&Instruction{Name: "EXG", Class: RegisterPair, Opcode: 0x1E})
	add(&Instruction{Name: "TFR", Class: RegisterPair, Opcode: 0x1F})

	add(&Instruction{Name: "LEAX", Class: LoadEffective, Opcode: 0x30})
	add(&Instruction{Name: "LEAY", Class: LoadEffective, Opcode: 0x31})
	add(&Instruction{Name: "LEAS", Class: LoadEffective, Opcode: 0x32})
	add(&Instruction{Name: "LEAU", Class: LoadEffective, Opcode: 0x33})

	add(&Instruction{Name: "PSHS", Class: Stack, Opcode: 0x34})
	add(&Instruction{Name: "PULS", Class: Stack, Opcode: 0x35})
	add(&Instruction{Name: "PSHU", Class: Stack, Opcode: 0x36, UserStack: true})
	add(&Instruction{Name: "PULU", Class: Stack, Opcode: 0x37, UserStack: true})
}

func add(ins *Instruction) {
	instructions[ins.Name] = ins
}
