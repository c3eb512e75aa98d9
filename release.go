//go:build !lrureap_debug

package lrureap

const debugging = false

func assert(bool, string) {}
