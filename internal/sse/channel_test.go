// Package sse - Test tính tất định của tên channel và validate cuid.
package sse

import (
	"testing"
)

func TestGeneratePersonalChannel_TatDinh(t *testing.T) {
	first := GeneratePersonalChannel("user-1", "tenant-01")
	second := GeneratePersonalChannel("user-1", "tenant-01")
	if first != second {
		t.Errorf("cùng input phải cho cùng channel: %q != %q", first, second)
	}
}

func TestGeneratePersonalChannel_KhongTrungLap(t *testing.T) {
	seen := make(map[string]string)
	pairs := []struct{ user, cuid string }{
		{"user-1", "tenant-01"},
		{"user-2", "tenant-01"},
		{"user-1", "tenant-02"},
		{"user-2", "tenant-02"},
	}

	for _, p := range pairs {
		channel := GeneratePersonalChannel(p.user, p.cuid)
		if prev, ok := seen[channel]; ok {
			t.Errorf("channel %q trùng giữa (%s,%s) và %s", channel, p.user, p.cuid, prev)
		}
		seen[channel] = p.user + "/" + p.cuid
	}
}

func TestGenerateAnnouncementChannels(t *testing.T) {
	channels := GenerateAnnouncementChannels("tenant-01")
	if len(channels) != 3 {
		t.Fatalf("phải có đúng 3 channel announcement, có %d", len(channels))
	}

	// Thứ tự cố định: general, urgent, system
	want := []string{
		"notifications:tenant-01:announcement:general",
		"notifications:tenant-01:announcement:urgent",
		"notifications:tenant-01:announcement:system",
	}
	for i, channel := range channels {
		if channel != want[i] {
			t.Errorf("channel[%d] = %q, muốn %q", i, channel, want[i])
		}
	}

	// Tenant khác cho channel khác
	other := GenerateAnnouncementChannels("tenant-02")
	for i := range channels {
		if channels[i] == other[i] {
			t.Errorf("channel của hai tenant không được trùng: %q", channels[i])
		}
	}
}

func TestValidateCuid(t *testing.T) {
	valid := []string{"tenant-01", "abc", "A_b-9", "x"}
	for _, cuid := range valid {
		if !ValidateCuid(cuid) {
			t.Errorf("cuid %q phải hợp lệ", cuid)
		}
	}

	invalid := []string{"", "   ", "tenant 01", "tenant/01", "tenant@01", "tenant:01"}
	for _, cuid := range invalid {
		if ValidateCuid(cuid) {
			t.Errorf("cuid %q phải bị từ chối", cuid)
		}
	}
}
