package volume

import (
	"strings"
	"testing"
)

const sampleMounts = `proc /proc proc rw,nosuid,nodev,noexec,relatime 0 0
/dev/nvme0n1p2 / ext4 rw,relatime 0 0
/dev/sdb1 /run/media/alex/RPI-RP2 vfat rw,nosuid,nodev,relatime 0 0
/dev/sdc1 /run/media/alex/MY\040DISK vfat rw 0 0
tmpfs /tmp tmpfs rw 0 0
`

func TestFindMount(t *testing.T) {
	mp, ok := findMount(strings.NewReader(sampleMounts), "/dev/sdb1")
	if !ok {
		t.Fatal("expected mount point for /dev/sdb1")
	}
	if mp != "/run/media/alex/RPI-RP2" {
		t.Errorf("unexpected mount point: %s", mp)
	}
}

func TestFindMountUnmountedDevice(t *testing.T) {
	if _, ok := findMount(strings.NewReader(sampleMounts), "/dev/sdd1"); ok {
		t.Fatal("expected no mount point for unmounted device")
	}
}

func TestFindMountDecodesEscapedPath(t *testing.T) {
	mp, ok := findMount(strings.NewReader(sampleMounts), "/dev/sdc1")
	if !ok {
		t.Fatal("expected mount point for /dev/sdc1")
	}
	if mp != "/run/media/alex/MY DISK" {
		t.Errorf("expected decoded space, got %q", mp)
	}
}

func TestUnescapeMountPassthrough(t *testing.T) {
	if got := unescapeMount("/plain/path"); got != "/plain/path" {
		t.Errorf("unexpected rewrite: %q", got)
	}
}
