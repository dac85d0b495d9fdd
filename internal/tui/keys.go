package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down      key.Binding
	SwitchPane    key.Binding
	Select        key.Binding
	Copy          key.Binding
	CopyRecent    key.Binding
	Favorite      key.Binding
	FavoritesOnly key.Binding
	Archive       key.Binding
	Undo          key.Binding
	Sort          key.Binding
	Search        key.Binding
	Palette       key.Binding
	Toggle        key.Binding
	Preview       key.Binding
	QuickAdd      key.Binding
	DarkMode      key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		SwitchPane:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "pane")),
		Select:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open/copy")),
		Copy:          key.NewBinding(key.WithKeys("c", "y"), key.WithHelp("c", "copy")),
		CopyRecent:    key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1-3", "copy recent")),
		Favorite:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		FavoritesOnly: key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "favorites only")),
		Archive:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "archive")),
		Undo:          key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo archive")),
		Sort:          key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Palette:       key.NewBinding(key.WithKeys("ctrl+k", "ctrl+p"), key.WithHelp("ctrl+k", "palette")),
		Toggle:        key.NewBinding(key.WithKeys(" ", "left", "right", "h", "l"), key.WithHelp("space", "expand/collapse")),
		Preview:       key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "preview")),
		QuickAdd:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "add from clipboard")),
		DarkMode:      key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "dark mode")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchPane, k.Copy, k.CopyRecent, k.Search, k.Palette, k.Archive, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.SwitchPane, k.Select, k.Toggle},
		{k.Copy, k.CopyRecent, k.QuickAdd, k.Favorite, k.FavoritesOnly},
		{k.Archive, k.Undo, k.Sort, k.Search, k.Palette},
		{k.Preview, k.DarkMode, k.Help, k.Quit},
	}
}
