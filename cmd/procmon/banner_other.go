//go:build !linux

package main

func cgroupMode() string { return "n/a" }
