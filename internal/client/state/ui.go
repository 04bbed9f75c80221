package state

import "github.com/dmitrijs2005/edachat/internal/client/models"

func (s *Store) ToggleSidebar() {
	s.apply(s.generation(), func(st *State) { st.SidebarVisible = !st.SidebarVisible })
}

func (s *Store) SetTab(tab string) {
	s.apply(s.generation(), func(st *State) { st.CurrentTab = tab })
}

// AddMessage appends m to the current message list without contacting the
// backend.
func (s *Store) AddMessage(m models.Message) {
	s.apply(s.generation(), func(st *State) { st.Messages = append(st.Messages, m) })
}

// ClearHistory empties the displayed message list only.
func (s *Store) ClearHistory() {
	s.apply(s.generation(), func(st *State) { st.Messages = []models.Message{} })
}
