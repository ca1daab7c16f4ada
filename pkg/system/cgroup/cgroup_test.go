//go:build linux

package cgroup

import (
	"bufio"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Detect(t *testing.T) {
	ver, str, err := Detect()
	require.NoError(t, err)
	assert.NotEmpty(t, str)

	t.Logf("detected %s: %s", ver, str)
}

func Test_ParseMountInfo(t *testing.T) {
	line := "35 24 0:30 / /sys/fs/cgroup rw,nosuid,nodev,noexec,relatime shared:9 - cgroup2 cgroup2 rw,nsdelegate"
	fstype, mp, ok := parseMountInfo(line)
	require.True(t, ok)
	assert.Equal(t, "cgroup2", fstype)
	assert.Equal(t, "/sys/fs/cgroup", mp)

	_, _, ok = parseMountInfo("garbage")
	assert.False(t, ok)
}

func Test_ParseProcCgroup(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"v2", "0::/user.slice/user-1000.slice/session-2.scope\n", "/user.slice/user-1000.slice/session-2.scope"},
		{"hybrid", "12:cpu,cpuacct:/docker/abc\n0::/docker/abc\n", "/docker/abc"},
		{"v1", "4:memory:/\n3:cpu,cpuacct:/system.slice/sshd.service\n", "/system.slice/sshd.service"},
		{"root", "4:memory:/\n", "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseProcCgroup(bufio.NewScanner(strings.NewReader(tc.in)))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func Test_ProcessPath_Self(t *testing.T) {
	p, err := ProcessPath(os.Getpid())
	if err != nil {
		t.Skipf("skipping: /proc/self/cgroup not available: %v", err)
	}
	assert.True(t, strings.HasPrefix(p, "/"), "cgroup path is absolute: %q", p)
}

func Test_ProcessPath_NoSuchPid(t *testing.T) {
	_, err := ProcessPath(99999999)
	require.Error(t, err)
}

func TestVersion_String(t *testing.T) {
	assert.Equal(t, "cgroup v2", V2.String())
	assert.Equal(t, "unsupported", Unsupported.String())
}
