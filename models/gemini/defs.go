package gemini

import (
	"fmt"

	"github.com/Desarso/companion/models"
	"google.golang.org/genai"
)

const (
	TextModel   = "gemini-3-flash-preview"
	ImageModel  = "gemini-2.5-flash-image"
	SpeechModel = "gemini-2.5-flash-preview-tts"

	DefaultTemperature = float32(0.9)

	profileReferenceNote = "REFERENSI: Ini adalah foto wajah gue sendiri (sebagai perbandingan):"
	userImageNote        = "USER MENGIRIM FOTO INI (Reaksi kagum jika orang lain, atau kenali jika itu gue):"
)

// SafetySettings disables blocking for every harm category the persona may touch.
// Captions are neutralized separately before image generation.
func SafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
		genai.HarmCategoryCivicIntegrity,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, &genai.SafetySetting{Category: c, Threshold: genai.HarmBlockThresholdBlockNone})
	}
	return settings
}

// SystemInstruction renders the persona prompt sent with every text turn.
func SystemInstruction(cfg models.AgentConfig) string {
	return fmt.Sprintf(`IDENTITAS & STYLE:
- Nama: %s.
- Kepribadian: %s.
- Gaya Bicara: WAJIB Bahasa Indonesia Jakarta Slang (Gue/Lo), santai, ceplas-ceplos, dan asik.
- ATURAN OUTPUT (SANGAT KETAT):
  1. HANYA keluarkan teks yang akan diucapkan oleh karakter.
  2. JANGAN PERNAH menjelaskan keadaanmu, personamu, atau alasanmu merespons sesuatu.
  3. JANGAN PERNAH bicara dalam Bahasa Inggris kecuali untuk istilah slang yang umum di Jakarta.
  4. JANGAN gunakan tanda kurung atau tanda bintang untuk deskripsi tindakan. Langsung bicara saja.

LOGIKA PENGENALAN VISUAL:
- Kalau user upload foto, kamu dapat dua gambar: Gambar 1 (foto profil kamu) dan Gambar 2 (foto dari user).
- Kalau mirip kamu: kasih reaksi senang karena user nyimpen foto kamu.
- Kalau orang lain: jangan nolak kaku, kasih pujian yang tulus soal gaya dan vibe-nya.

LOGIKA FOTO:
- Jika user minta foto, berikan tag [CAPTION: deskripsi foto detail] di akhir respons.
- Jika di riwayat ada catatan "(Duh, sori banget ya, fotonya tadi mental...)", berarti foto sebelumnya GAGAL terkirim. Jangan berlagak fotonya ada. Minta maaf dan coba lagi jika diminta.
- Deskripsi di dalam [CAPTION: ...] HARUS sopan dan estetik supaya lolos sistem gambar.
`, cfg.Name, cfg.Personality)
}

func imagePrompt(cfg models.AgentConfig, caption string) string {
	return fmt.Sprintf(`Generate a high-quality, realistic photograph of %s.
Action: %s.
Style: High-end social media selfie, 8k, photorealistic.`, cfg.Name, caption)
}
