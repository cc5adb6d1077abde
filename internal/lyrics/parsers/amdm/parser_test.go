package amdm

import (
	"errors"
	"testing"
)

const songPage = `<html><head><title>amdm</title></head><body>
<h1>Михаил Круг - Владимирский централ аккорды</h1>
<pre itemprop="chordsBlock" class="field__podbor_new podbor__text"><div class="podbor__keyword">[Вступление]: Am Dm</div>
<div class="podbor__chord">Am</div>Весна опять *пришла
<span class="podbor__author-comment">/* play soft */</span>
[Куплет]:
Владимирский централ
<div class="podbor__chord">E</div>ветер северный
[Проигрыш]: Am E
Этапом из Твери
</pre></body></html>`

func TestExtract(t *testing.T) {
	p := NewParserWithConfig(nil, DefaultConfig())

	result, err := p.Extract(songPage)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if result.Title != "Михаил Круг - Владимирский централ" {
		t.Fatalf("title %q", result.Title)
	}

	want := "Весна опять пришла\n\nВладимирский централ\nветер северный\nЭтапом из Твери"
	if result.Text != want {
		t.Fatalf("text\n%q\nwant\n%q", result.Text, want)
	}
}

func TestExtractKeepsSectionMarkers(t *testing.T) {
	config := DefaultConfig()
	config.KeepSectionMarkers = true
	p := NewParserWithConfig(nil, config)

	result, err := p.Extract(songPage)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := "Весна опять пришла\n\n[Куплет]:\nВладимирский централ\nветер северный\nЭтапом из Твери"
	if result.Text != want {
		t.Fatalf("text\n%q\nwant\n%q", result.Text, want)
	}
}

func TestExtractWithoutChordsBlock(t *testing.T) {
	p := NewParserWithConfig(nil, DefaultConfig())
	if _, err := p.Extract("<html><body><pre>nothing</pre></body></html>"); !errors.Is(err, ErrNoChordsBlock) {
		t.Fatalf("expect ErrNoChordsBlock, got %v", err)
	}
}

func TestFinalCleanupCapsBreaks(t *testing.T) {
	p := NewParserWithConfig(nil, DefaultConfig())
	if got := p.finalCleanup("a\n\n\n\n\nb\n"); got != "a\n\nb" {
		t.Fatalf("got %q", got)
	}
}
