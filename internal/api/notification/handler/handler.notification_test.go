// Package notifhdl - Test parse filter từ query string.
package notifhdl

import (
	"testing"

	notifdto "prop_manager/internal/api/notification/dto"
)

func TestParseListFilter_Rong(t *testing.T) {
	lf := parseListFilter(notifdto.NotificationListQuery{})
	if lf != nil {
		t.Errorf("query rỗng phải trả về filter nil, có: %+v", lf)
	}
}

func TestParseListFilter_TypeDonVaList(t *testing.T) {
	lf := parseListFilter(notifdto.NotificationListQuery{Type: "payment"})
	if lf == nil || len(lf.Types) != 1 || lf.Types[0] != "payment" {
		t.Errorf("type đơn parse sai: %+v", lf)
	}

	lf = parseListFilter(notifdto.NotificationListQuery{Type: "payment,task,message"})
	if lf == nil || len(lf.Types) != 3 {
		t.Errorf("type list phân tách dấu phẩy parse sai: %+v", lf)
	}
}

func TestParseListFilter_IsRead(t *testing.T) {
	lf := parseListFilter(notifdto.NotificationListQuery{IsRead: "false"})
	if lf == nil || lf.IsRead == nil || *lf.IsRead != false {
		t.Errorf("isRead=false parse sai: %+v", lf)
	}

	lf = parseListFilter(notifdto.NotificationListQuery{IsRead: "true"})
	if lf == nil || lf.IsRead == nil || *lf.IsRead != true {
		t.Errorf("isRead=true parse sai: %+v", lf)
	}

	// Giá trị không parse được thì bỏ qua
	lf = parseListFilter(notifdto.NotificationListQuery{IsRead: "maybe"})
	if lf != nil {
		t.Errorf("isRead không hợp lệ phải bị bỏ qua, có: %+v", lf)
	}
}

func TestParseListFilter_Priority(t *testing.T) {
	lf := parseListFilter(notifdto.NotificationListQuery{Priority: "high,urgent"})
	if lf == nil || len(lf.Priorities) != 2 {
		t.Errorf("priority list parse sai: %+v", lf)
	}
}
