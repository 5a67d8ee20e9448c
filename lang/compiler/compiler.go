// Much of the compiler package is adapted from the Starlark source code:
// https://github.com/google/starlark-go/tree/ee8ed142361c69d52fe8e9fb5e311d2a0a7c02de
//
// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compiler takes lowered IR (lang/ir, built by lang/irgen) and
// compiles it to bytecode that can be executed by the virtual machine
// (lang/machine). It also provides a pseudo-assembly serialization and
// deserialization (asm.go) to encode in textual form a program that
// closely matches the binary format of the compiled form.
//
// The actual IR-to-bytecode lowering lives in gen.go; this file holds
// the low-level instruction encoding shared by the generator and the
// assembler.
package compiler

// insn is a decoded instruction (opcode plus its argument, if any) used
// by the assembler while translating jump-target indices to addresses
// before final encoding.
type insn struct {
	op  Opcode
	arg uint32
}

// encodeInsn appends op, followed by its argument if it takes one, to
// code. Jump opcodes always reserve exactly 4 bytes for their argument
// (padded with NOPs) so that a forward jump can be patched once its
// target address is known without re-encoding everything after it.
func encodeInsn(code []byte, op Opcode, arg uint32) []byte {
	code = append(code, byte(op))
	if op >= OpcodeArgMin {
		if isJump(op) {
			code = addUint32(code, arg, 4) // pad arg to 4 bytes
		} else {
			code = addUint32(code, arg, 0)
		}
	}
	return code
}

// addUint32 encodes x as a 7-bit little-endian varint, padding with NOPs
// (which the interpreter executes as harmless no-ops) until at least min
// bytes have been written.
func addUint32(code []byte, x uint32, min int) []byte {
	end := len(code) + min
	for x >= 0x80 {
		code = append(code, byte(x)|0x80)
		x >>= 7
	}
	code = append(code, byte(x))
	for len(code) < end {
		code = append(code, byte(NOP))
	}
	return code
}
