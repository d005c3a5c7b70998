package store

import (
	"math/rand"
	"time"
)

func strptr(s string) *string { return &s }

// LoadSampleData populates the store with the fixed demo data the app ships
// with: one user, one conversation with its first exchange, and 30 days of
// randomized token usage. Meant to be called once, right after NewMemStore.
func (s *MemStore) LoadSampleData() {
	user := s.CreateUser(NewUser{
		Username: "demo_user",
		Password: "password",
		Email:    strptr("demo@example.com"),
		Role:     strptr("Developer"),
	})

	conv := s.CreateConversation(NewConversation{
		UserID: user.ID,
		Title:  "Crude apa saja yang diolah pa...",
	})

	s.CreateMessage(NewMessage{
		ConversationID: conv.ID,
		Content:        "Crude apa saja yang diolah pada bulan Mei 2025 ?",
		Role:           RoleUser,
	})
	s.CreateMessage(NewMessage{
		ConversationID: conv.ID,
		Content: "Pada bulan Mei 2025, unit pengolahan di Kilang Cilacap mengolah kombinasi " +
			"dari beberapa jenis minyak mentah (crude oil) untuk memenuhi spesifikasi produk " +
			"dan optimasi biaya operasional.\n\nJenis Crude Oil yang Diolah:\n\nMinas Crude: " +
			"Merupakan crude oil yang diproduksi secara domestik dari sumur minyak di Indonesia. " +
			"Ini adalah minyak mentah yang stabil dengan kadar sulfur rendah, sering digunakan " +
			"sebagai base load di kilang kami.\n\nSaudi Light Crude: Diimpor dari Arab Saudi, " +
			"minyak mentah ini memiliki kandungan sulfur yang moderat dan gravitasi API yang " +
			"lebih ringan, sangat ideal untuk menghasilkan bensin dan nafta berkualitas tinggi." +
			"\n\nWTI (West Texas Intermediate) Crude: Jenis minyak mentah ini berasal dari " +
			"Amerika Serikat. Digunakan sebagai topping untuk meningkatkan produksi " +
			"produk-produk distillate ringan seperti avtur dan kerosene.",
		Role: RoleAssistant,
	})

	// One usage record per day for the last 30 days, between 1000 and 5999
	// tokens each.
	now := time.Now()
	s.mu.Lock()
	for i := 0; i < 30; i++ {
		s.insertTokenUsageAt(user.ID, now.AddDate(0, 0, -i), rand.Intn(5000)+1000)
	}
	s.mu.Unlock()
}
