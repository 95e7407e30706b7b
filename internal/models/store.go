package models

type Store struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

type StoreUpdate struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

// StoreForm is the settings card bound to the singleton store.
type StoreForm struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (s Store) Form() StoreForm {
	return StoreForm{Name: s.Name, Address: s.Address, Phone: s.Phone}
}

func (f StoreForm) Update() StoreUpdate {
	return StoreUpdate{Name: &f.Name, Address: &f.Address, Phone: &f.Phone}
}

type NotificationKey string

const (
	NotifyLowStock      NotificationKey = "low_stock"
	NotifyOutOfStock    NotificationKey = "out_of_stock"
	NotifyOrderReminder NotificationKey = "order_reminder"
	NotifyDailyReport   NotificationKey = "daily_report"
)

func ParseNotificationKey(s string) (NotificationKey, bool) {
	switch k := NotificationKey(s); k {
	case NotifyLowStock, NotifyOutOfStock, NotifyOrderReminder, NotifyDailyReport:
		return k, true
	}
	return "", false
}

type NotificationSettings struct {
	ID            int64     `json:"id"`
	LowStock      bool      `json:"low_stock"`
	OutOfStock    bool      `json:"out_of_stock"`
	OrderReminder bool      `json:"order_reminder"`
	DailyReport   bool      `json:"daily_report"`
	CreatedAt     Timestamp `json:"created_at"`
	UpdatedAt     Timestamp `json:"updated_at"`
}

// With returns a copy with one toggle changed.
func (n NotificationSettings) With(key NotificationKey, enabled bool) NotificationSettings {
	switch key {
	case NotifyLowStock:
		n.LowStock = enabled
	case NotifyOutOfStock:
		n.OutOfStock = enabled
	case NotifyOrderReminder:
		n.OrderReminder = enabled
	case NotifyDailyReport:
		n.DailyReport = enabled
	}
	return n
}

// Update sends all four toggles together.
func (n NotificationSettings) Update() NotificationSettingsUpdate {
	return NotificationSettingsUpdate{
		LowStock:      &n.LowStock,
		OutOfStock:    &n.OutOfStock,
		OrderReminder: &n.OrderReminder,
		DailyReport:   &n.DailyReport,
	}
}

type NotificationSettingsUpdate struct {
	LowStock      *bool `json:"low_stock,omitempty"`
	OutOfStock    *bool `json:"out_of_stock,omitempty"`
	OrderReminder *bool `json:"order_reminder,omitempty"`
	DailyReport   *bool `json:"daily_report,omitempty"`
}
