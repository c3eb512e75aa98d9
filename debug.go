//go:build lrureap_debug

package lrureap

const debugging = true

func assert(cond bool, message string) {
	if !cond {
		panic(message)
	}
}
