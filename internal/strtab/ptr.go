package strtab

import "unsafe"

func uintptrOf(u *UniqueString) uintptr {
	return uintptr(unsafe.Pointer(u))
}
