//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/bsoldiers/vtview/api"
)

func bytesArg(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func toUint8Array(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

// args: name string, data Uint8Array
func vtf2png(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing name or texture bytes")
	}
	out, err := api.ToPNG(args[0].String(), bytesArg(args[1]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toUint8Array(out)
}

func vtf2glb(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing name or texture bytes")
	}
	out, err := api.ToGLB(args[0].String(), bytesArg(args[1]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toUint8Array(out)
}

func vtfinfo(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing vtf bytes")
	}
	text, err := api.Info(bytesArg(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return js.ValueOf(text)
}

func sniff(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing name or bytes")
	}
	return js.ValueOf(api.Sniff(args[0].String(), bytesArg(args[1])).String())
}

func main() {
	js.Global().Set("vtf2png", js.FuncOf(vtf2png))
	js.Global().Set("vtf2glb", js.FuncOf(vtf2glb))
	js.Global().Set("vtfinfo", js.FuncOf(vtfinfo))
	js.Global().Set("vtfsniff", js.FuncOf(sniff))
	select {}
}
