// Package delivery - Test dẫn xuất channel từ notification.
package delivery

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	notifmodels "prop_manager/internal/api/notification/models"
	"prop_manager/internal/sse"
)

func TestDeriveChannels_Individual(t *testing.T) {
	recipient := primitive.NewObjectID()
	n := notifmodels.Notification{
		CUID:          "tenant-01",
		RecipientType: notifmodels.RecipientTypeIndividual,
		Recipient:     &recipient,
		Type:          notifmodels.TypeMessage,
		Priority:      notifmodels.PriorityMedium,
	}

	channels := DeriveChannels(n)
	if len(channels) != 1 {
		t.Fatalf("notification individual phải vào đúng 1 channel, có %d", len(channels))
	}

	want := sse.GeneratePersonalChannel(recipient.Hex(), "tenant-01")
	if channels[0] != want {
		t.Errorf("channel = %q, muốn channel cá nhân %q", channels[0], want)
	}
}

func TestDeriveChannels_AnnouncementPhanVung(t *testing.T) {
	announcement := sse.GenerateAnnouncementChannels("tenant-01")

	cases := []struct {
		name     string
		typ      string
		priority string
		want     string
	}{
		{"urgent đi vào phân vùng urgent", notifmodels.TypeMaintenance, notifmodels.PriorityUrgent, announcement[1]},
		{"type system đi vào phân vùng system", notifmodels.TypeSystem, notifmodels.PriorityMedium, announcement[2]},
		{"còn lại đi vào general", notifmodels.TypeAnnouncement, notifmodels.PriorityHigh, announcement[0]},
		{"urgent thắng system khi cả hai", notifmodels.TypeSystem, notifmodels.PriorityUrgent, announcement[1]},
	}

	for _, tc := range cases {
		n := notifmodels.Notification{
			CUID:          "tenant-01",
			RecipientType: notifmodels.RecipientTypeAnnouncement,
			Type:          tc.typ,
			Priority:      tc.priority,
		}

		channels := DeriveChannels(n)
		if len(channels) != 1 {
			t.Fatalf("%s: phải vào đúng 1 channel, có %d", tc.name, len(channels))
		}
		if channels[0] != tc.want {
			t.Errorf("%s: channel = %q, muốn %q", tc.name, channels[0], tc.want)
		}
	}
}
