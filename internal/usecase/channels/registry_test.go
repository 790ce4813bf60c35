package channels

import (
	"os"
	"path/filepath"
	"testing"

	"farcaster-pulse/internal/domain"
)

func TestIsAllowlisted(t *testing.T) {
	registry := NewRegistry(defaultChannels())
	if !registry.IsAllowlisted("animenews") {
		t.Fatalf("ожидали animenews в аллоулисте")
	}
	if registry.IsAllowlisted("unknown-channel") {
		t.Fatalf("не ожидали неизвестный канал в аллоулисте")
	}
}

func TestIsAllowlistedExplicitlyDisabled(t *testing.T) {
	registry := NewRegistry([]domain.Channel{{ID: "paused", Allowlisted: false}})
	if registry.IsAllowlisted("paused") {
		t.Fatalf("выключенный канал не должен проходить проверку")
	}
	if _, ok := registry.Config("paused"); !ok {
		t.Fatalf("конфигурация выключенного канала должна быть доступна")
	}
}

func TestConfigUnknown(t *testing.T) {
	registry := NewRegistry(defaultChannels())
	if _, ok := registry.Config("unknown-channel"); ok {
		t.Fatalf("не ожидали конфигурацию для неизвестного канала")
	}
}

func TestAllowlistedStableOrder(t *testing.T) {
	registry := NewRegistry([]domain.Channel{
		{ID: "zeta", Allowlisted: true},
		{ID: "alpha", Allowlisted: true},
		{ID: "muted", Allowlisted: false},
	})
	list := registry.Allowlisted()
	if len(list) != 2 {
		t.Fatalf("ожидали 2 канала, получили %d", len(list))
	}
	if list[0].ID != "alpha" || list[1].ID != "zeta" {
		t.Fatalf("ожидали стабильный порядок по id, получили %s, %s", list[0].ID, list[1].ID)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channels.json")
	payload := `[{"id":"animenews","allowlisted":true,"customization":{"description":"Новости аниме"}}]`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("не удалось записать файл: %v", err)
	}

	registry, err := Load(path)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	ch, ok := registry.Config("animenews")
	if !ok {
		t.Fatalf("ожидали канал из файла")
	}
	if ch.Customization.Description == nil || *ch.Customization.Description != "Новости аниме" {
		t.Fatalf("ожидали описание из файла")
	}
}

func TestLoadDefaultWhenPathEmpty(t *testing.T) {
	registry, err := Load("")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !registry.IsAllowlisted("animenews") {
		t.Fatalf("ожидали встроенный аллоулист")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatalf("не удалось записать файл: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("ожидали ошибку разбора")
	}
}
