package views

// Layout — состояние оболочки страницы (сайдбар, раздел справки).
// Принадлежит конкретному view, глобального экземпляра нет.
type Layout struct {
	SidebarOpen bool   `json:"sidebar_open"`
	HelpSection string `json:"help_section,omitempty"`
}

func (l *Layout) ToggleSidebar() { l.SidebarOpen = !l.SidebarOpen }

// OpenHelp открывает раздел справки; повторный вызов с тем же разделом закрывает его.
func (l *Layout) OpenHelp(section string) {
	if l.HelpSection == section {
		l.HelpSection = ""
		return
	}
	l.HelpSection = section
}
