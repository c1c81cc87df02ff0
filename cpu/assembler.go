// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

func init() {
	for key, value := range _cpu_defines {
		sysEquate[key] = value
	}
}

// Assembler is a single pass macro assembler for CHIP-8 programs.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int(v64)
	return
}

// rangeOf returns the value of a word, which must be within [lo, hi].
func (asm *Assembler) rangeOf(word string, lo, hi int) (value int, err error) {
	value, err = asm.valueOf(word)
	if err != nil {
		return
	}

	if value < lo || value > hi {
		err = errors.Join(ErrValueRange, ErrParseNumber(word))
		return
	}

	return
}

// byteOf returns an 8-bit immediate. Negative values are two's complement.
func (asm *Assembler) byteOf(word string) (value uint8, err error) {
	v, err := asm.rangeOf(word, -0x80, 0xff)
	value = uint8(v)
	return
}

// nibbleOf returns a 4-bit immediate.
func (asm *Assembler) nibbleOf(word string) (value uint8, err error) {
	v, err := asm.rangeOf(word, 0, 0xf)
	value = uint8(v)
	return
}

// addrOf returns a 12-bit address, or the label to link it to.
func (asm *Assembler) addrOf(word string) (addr uint16, label string, err error) {
	v, err := asm.rangeOf(word, 0, 0xfff)
	if err != nil {
		var perr ErrParseNumber
		if errors.As(err, &perr) && !errors.Is(err, ErrValueRange) && reIdentifier.MatchString(word) {
			label = word
			err = nil
		}
		return
	}

	addr = uint16(v)
	return
}

// regOf returns the register index of a Vx word.
func regOf(word string) (x uint8, ok bool) {
	if len(word) != 2 || (word[0] != 'V' && word[0] != 'v') {
		return
	}

	v, err := strconv.ParseUint(word[1:], 16, 4)
	if err != nil {
		return
	}

	x = uint8(v)
	ok = true
	return
}

// mustReg returns the register index of a Vx word, or ErrRegisterInvalid.
func mustReg(word string) (x uint8, err error) {
	x, ok := regOf(word)
	if !ok {
		err = errors.Join(ErrRegisterInvalid, ErrParseNumber(word))
	}
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	for key, str := range asm.Equate {
		var v int
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(v)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

var (
	reCharacter = regexp.MustCompile(`'\\?[^']'`)
	reParen     = regexp.MustCompile(`\$\([^\$]*\)`)
)

// splitWords splits a line into words. Commas separate operands.
func splitWords(line string) []string {
	return strings.Fields(strings.ReplaceAll(line, ",", " "))
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if strings.ToLower(words[0]) == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		// Local labels are unique per invocation.
		local := fmt.Sprintf("%v_%v_", name, lineno)
		for n, line := range macro.Lines {
			mline := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, mline)
			if err != nil {
				err = ErrMacro{Macro: name, Line: mline, Err: err}
				err = ErrSyntax{LineNo: mline, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, mline)
			if err != nil {
				err = ErrMacro{Macro: name, Line: mline, Err: err}
				err = ErrSyntax{LineNo: mline, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddr gets the address of the next assembled byte.
func (asm *Assembler) currentAddr() int {
	if len(asm.Opcode) == 0 {
		return PROGRAM_START
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Addr + len(last.Data)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && strings.ToLower(words[0]) == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && strings.ToLower(words[0]) == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	line = ""
	lineno = 0

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		if len(op.Data) != INSTRUCTION_SIZE {
			log.Fatalf("Unable to link label '%s' to line %d: %v", label, op.LineNo, op.Words)
		}
		op.Data[0] |= uint8(addr>>8) & 0xf
		op.Data[1] |= uint8(addr)
	}

	if asm.currentAddr()-PROGRAM_START > PROGRAM_SIZE {
		err = ErrProgramSize
		return
	}

	prog = &Program{
		Opcodes: make([]Opcode, len(asm.Opcode)),
	}
	copy(prog.Opcodes, asm.Opcode)

	return
}

// argCount verifies the number of operands.
func argCount(args []string, lo, hi int) (err error) {
	switch {
	case len(args) < lo:
		err = ErrOpcodeValueMissing
	case len(args) > hi:
		err = ErrOpcodeExtraArgs
	}
	return
}

// regOp maps the register-to-register ALU mnemonics.
var regOp = map[string]Op{
	"OR":   OP_OR,
	"AND":  OP_AND,
	"XOR":  OP_XOR,
	"SUB":  OP_SUB,
	"SUBN": OP_SUBN,
	"SHR":  OP_SHR,
	"SHL":  OP_SHL,
}

// ldDst maps the special LD destinations that take a register source.
var ldDst = map[string]Op{
	"DT":  OP_SET_DT,
	"ST":  OP_SET_ST,
	"F":   OP_LD_FONT,
	"B":   OP_BCD,
	"[I]": OP_STORE,
}

// ldSrc maps the special LD sources that take a register destination.
var ldSrc = map[string]Op{
	"DT":  OP_LD_DT,
	"K":   OP_LD_KEY,
	"[I]": OP_LOAD,
}

// encode assembles a single instruction.
func (asm *Assembler) encode(mnemonic string, args []string) (code Code, label string, err error) {
	var x, y, kk uint8
	var addr uint16

	switch mnemonic {
	case "CLS", "RET":
		if err = argCount(args, 0, 0); err != nil {
			return
		}
		op := OP_CLS
		if mnemonic == "RET" {
			op = OP_RET
		}
		code = MakeCode(op)
	case "JP":
		if err = argCount(args, 1, 2); err != nil {
			return
		}
		op := OP_JP
		if len(args) == 2 {
			x, err = mustReg(args[0])
			if err != nil {
				return
			}
			if x != 0 {
				err = ErrRegisterInvalid
				return
			}
			op = OP_JP_V0
			args = args[1:]
		}
		addr, label, err = asm.addrOf(args[0])
		if err != nil {
			return
		}
		code = MakeCodeAddr(op, addr)
	case "CALL":
		if err = argCount(args, 1, 1); err != nil {
			return
		}
		addr, label, err = asm.addrOf(args[0])
		if err != nil {
			return
		}
		code = MakeCodeAddr(OP_CALL, addr)
	case "SE", "SNE":
		if err = argCount(args, 2, 2); err != nil {
			return
		}
		x, err = mustReg(args[0])
		if err != nil {
			return
		}
		var ok bool
		if y, ok = regOf(args[1]); ok {
			op := OP_SE_REG
			if mnemonic == "SNE" {
				op = OP_SNE_REG
			}
			code = MakeCodeReg(op, x, y)
			return
		}
		kk, err = asm.byteOf(args[1])
		if err != nil {
			return
		}
		op := OP_SE_BYTE
		if mnemonic == "SNE" {
			op = OP_SNE_BYTE
		}
		code = MakeCodeByte(op, x, kk)
	case "LD":
		if err = argCount(args, 2, 2); err != nil {
			return
		}
		dst := strings.ToUpper(args[0])
		src := strings.ToUpper(args[1])
		if dst == "I" {
			addr, label, err = asm.addrOf(args[1])
			if err != nil {
				return
			}
			code = MakeCodeAddr(OP_LD_I, addr)
			return
		}
		if op, ok := ldDst[dst]; ok {
			x, err = mustReg(args[1])
			if err != nil {
				return
			}
			code = MakeCodeReg(op, x, 0)
			return
		}
		x, err = mustReg(args[0])
		if err != nil {
			return
		}
		if op, ok := ldSrc[src]; ok {
			code = MakeCodeReg(op, x, 0)
			return
		}
		var ok bool
		if y, ok = regOf(args[1]); ok {
			code = MakeCodeReg(OP_LD_REG, x, y)
			return
		}
		kk, err = asm.byteOf(args[1])
		if err != nil {
			return
		}
		code = MakeCodeByte(OP_LD_BYTE, x, kk)
	case "ADD":
		if err = argCount(args, 2, 2); err != nil {
			return
		}
		if strings.ToUpper(args[0]) == "I" {
			x, err = mustReg(args[1])
			if err != nil {
				return
			}
			code = MakeCodeReg(OP_ADD_I, x, 0)
			return
		}
		x, err = mustReg(args[0])
		if err != nil {
			return
		}
		var ok bool
		if y, ok = regOf(args[1]); ok {
			code = MakeCodeReg(OP_ADD_REG, x, y)
			return
		}
		kk, err = asm.byteOf(args[1])
		if err != nil {
			return
		}
		code = MakeCodeByte(OP_ADD_BYTE, x, kk)
	case "OR", "AND", "XOR", "SUB", "SUBN", "SHR", "SHL":
		lo := 2
		if mnemonic == "SHR" || mnemonic == "SHL" {
			lo = 1
		}
		if err = argCount(args, lo, 2); err != nil {
			return
		}
		x, err = mustReg(args[0])
		if err != nil {
			return
		}
		if len(args) == 2 {
			y, err = mustReg(args[1])
			if err != nil {
				return
			}
		}
		code = MakeCodeReg(regOp[mnemonic], x, y)
	case "RND":
		if err = argCount(args, 2, 2); err != nil {
			return
		}
		x, err = mustReg(args[0])
		if err != nil {
			return
		}
		kk, err = asm.byteOf(args[1])
		if err != nil {
			return
		}
		code = MakeCodeByte(OP_RND, x, kk)
	case "DRW":
		if err = argCount(args, 3, 3); err != nil {
			return
		}
		x, err = mustReg(args[0])
		if err != nil {
			return
		}
		y, err = mustReg(args[1])
		if err != nil {
			return
		}
		var n uint8
		n, err = asm.nibbleOf(args[2])
		if err != nil {
			return
		}
		code = MakeCodeDraw(x, y, n)
	case "SKP", "SKNP":
		if err = argCount(args, 1, 1); err != nil {
			return
		}
		x, err = mustReg(args[0])
		if err != nil {
			return
		}
		op := OP_SKP
		if mnemonic == "SKNP" {
			op = OP_SKNP
		}
		code = MakeCodeReg(op, x, 0)
	default:
		err = ErrInstructionInvalid
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var data []byte
	var instruction bool
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(data) == 0 {
			return
		}
		opcode := Opcode{
			LineNo:      lineno,
			Addr:        asm.currentAddr(),
			Words:       initial_words,
			Data:        data,
			Instruction: instruction,
			LinkLabel:   label,
		}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := strings.ToUpper(words[0])
	args := words[1:]

	switch mnemonic {
	case ".BYTE":
		if err = argCount(args, 1, len(args)); err != nil {
			return
		}
		for _, arg := range args {
			var value uint8
			value, err = asm.byteOf(arg)
			if err != nil {
				return
			}
			data = append(data, value)
		}
	case ".WORD":
		if err = argCount(args, 1, len(args)); err != nil {
			return
		}
		for _, arg := range args {
			var value int
			value, err = asm.rangeOf(arg, -0x8000, 0xffff)
			if err != nil {
				return
			}
			data = binary.BigEndian.AppendUint16(data, uint16(value))
		}
	default:
		var code Code
		code, label, err = asm.encode(mnemonic, args)
		if err != nil {
			return
		}
		data = binary.BigEndian.AppendUint16(nil, uint16(code))
		instruction = true
	}

	return
}
