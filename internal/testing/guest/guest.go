// Package guest assembles a small WebAssembly module that drives the "env"
// buffer functions the way a C stdio guest does, for use in tests.
//
// The module keeps one 8-byte record per handle in its own memory: the
// descriptor at the handle address and the mode code right after it. Handles
// are 16, 32, 48 and so on, allocated from the exported global "next_handle",
// and bopen returns 0 once "next_handle" reaches the exported global
// "capacity". bclose stores the closed handle in the exported global
// "last_closed".
//
// Exported functions, all taking a handle first:
//
//	(func $read (param $h i32) (param $address i32) (param $length i32) (param $position i64) (result i32))
//	(func $write (param $h i32) (param $address i32) (param $length i32) (param $position i64))
//	(func $size (param $h i32) (result i64))
//	(func $touch (param $h i32)) ;; appends the 4-byte descriptor record
//	(func $log_int (param i32))
//	(func $log_string (param $address i32) (param $length i32))
package guest

// DataOffset is the lowest address tests may use for their own data.
const DataOffset = 4096

const (
	i32 = 0x7f
	i64 = 0x7e
)

const (
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionMemory   = 5
	sectionGlobal   = 6
	sectionExport   = 7
	sectionCode     = 10
)

const (
	externFunc   = 0x00
	externMemory = 0x02
	externGlobal = 0x03
)

// Wasm returns the module importing the "env" functions with the given name
// prefix, e.g. "" or "js_".
func Wasm(prefix string) []byte {
	types := vec(
		funcType([]byte{i32, i32, i32, i64}, []byte{i32}), // 0: fetch_buffer, read
		funcType([]byte{i32, i32, i32, i64}, nil),         // 1: flush_buffer, write
		funcType([]byte{i32}, []byte{i64}),                // 2: seek_end, size
		funcType([]byte{i32, i32}, []byte{i32}),           // 3: bopen
		funcType([]byte{i32}, nil),                        // 4: bclose, print_int, touch
		funcType([]byte{i32, i32}, nil),                   // 5: print_string
	)

	imports := vec(
		importFunc("env", prefix+"fetch_buffer", 0), // func 0
		importFunc("env", prefix+"flush_buffer", 1), // func 1
		importFunc("env", prefix+"seek_end", 2),     // func 2
		importFunc("env", prefix+"print_int", 4),    // func 3
		importFunc("env", prefix+"print_string", 5), // func 4
	)

	// funcs 5 through 12
	functions := vec([]byte{3}, []byte{4}, []byte{0}, []byte{1}, []byte{2}, []byte{4}, []byte{4}, []byte{5})

	memory := vec([]byte{0x00, 0x01}) // min one page, no max

	globals := vec(
		mutableI32(0),    // 0: next_handle
		mutableI32(0),    // 1: last_closed
		mutableI32(1024), // 2: capacity
	)

	exports := vec(
		export("memory", externMemory, 0),
		export("bopen", externFunc, 5),
		export("bclose", externFunc, 6),
		export("read", externFunc, 7),
		export("write", externFunc, 8),
		export("size", externFunc, 9),
		export("touch", externFunc, 10),
		export("log_int", externFunc, 11),
		export("log_string", externFunc, 12),
		export("next_handle", externGlobal, 0),
		export("last_closed", externGlobal, 1),
		export("capacity", externGlobal, 2),
	)

	loadDescriptor := []byte{0x20, 0x00, 0x28, 0x02, 0x00} // local.get 0; i32.load align=2

	code := vec(
		// bopen
		body(
			0x23, 0x00, 0x23, 0x02, 0x4f, // next_handle >= capacity
			0x04, 0x40, 0x41, 0x00, 0x0f, 0x0b, // if: return 0
			0x23, 0x00, 0x41, 0x10, 0x6a, 0x24, 0x00, // next_handle += 16
			0x23, 0x00, 0x20, 0x00, 0x36, 0x02, 0x00, // store descriptor
			0x23, 0x00, 0x20, 0x01, 0x36, 0x02, 0x04, // store mode at +4
			0x23, 0x00, // return next_handle
		),
		// bclose
		body(0x20, 0x00, 0x24, 0x01),
		// read
		body(concat(loadDescriptor, []byte{0x20, 0x01, 0x20, 0x02, 0x20, 0x03, 0x10, 0x00})...),
		// write
		body(concat(loadDescriptor, []byte{0x20, 0x01, 0x20, 0x02, 0x20, 0x03, 0x10, 0x01})...),
		// size
		body(concat(loadDescriptor, []byte{0x10, 0x02})...),
		// touch: flush_buffer(descriptor, h, 4, -1)
		body(concat(loadDescriptor, []byte{0x20, 0x00, 0x41, 0x04, 0x42, 0x7f, 0x10, 0x01})...),
		// log_int
		body(0x20, 0x00, 0x10, 0x03),
		// log_string
		body(0x20, 0x00, 0x20, 0x01, 0x10, 0x04),
	)

	return concat(
		[]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00},
		section(sectionType, types),
		section(sectionImport, imports),
		section(sectionFunction, functions),
		section(sectionMemory, memory),
		section(sectionGlobal, globals),
		section(sectionExport, exports),
		section(sectionCode, code),
	)
}

func funcType(params, results []byte) []byte {
	return concat([]byte{0x60}, uleb(uint32(len(params))), params, uleb(uint32(len(results))), results)
}

func importFunc(module, field string, typeIndex uint32) []byte {
	return concat(name(module), name(field), []byte{externFunc}, uleb(typeIndex))
}

func mutableI32(init int32) []byte {
	return concat([]byte{i32, 0x01, 0x41}, sleb(init), []byte{0x0b})
}

func export(n string, kind byte, index uint32) []byte {
	return concat(name(n), []byte{kind}, uleb(index))
}

// body encodes a function body with no locals.
func body(instructions ...byte) []byte {
	b := concat([]byte{0x00}, instructions, []byte{0x0b})
	return concat(uleb(uint32(len(b))), b)
}

func section(id byte, contents []byte) []byte {
	return concat([]byte{id}, uleb(uint32(len(contents))), contents)
}

func vec(items ...[]byte) []byte {
	return concat(append([][]byte{uleb(uint32(len(items)))}, items...)...)
}

func name(s string) []byte {
	return concat(uleb(uint32(len(s))), []byte(s))
}

func concat(parts ...[]byte) (ret []byte) {
	for _, p := range parts {
		ret = append(ret, p...)
	}
	return
}

func uleb(v uint32) (ret []byte) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(ret, b)
		}
		ret = append(ret, b|0x80)
	}
}

func sleb(v int32) (ret []byte) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(ret, b)
		}
		ret = append(ret, b|0x80)
	}
}
