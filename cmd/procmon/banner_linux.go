//go:build linux

package main

import "github.com/ja7ad/procmon/pkg/system/cgroup"

func cgroupMode() string {
	v, detail, err := cgroup.Detect()
	if err != nil || detail == "" {
		return v.String()
	}
	return v.String() + " (" + detail + ")"
}
