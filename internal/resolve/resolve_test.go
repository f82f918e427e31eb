package resolve

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Правило 3: ПОДТВЕРЖДЕНИЕ ЗАКАЗА": "правило 3 подтверждение заказа",
		"  Много   пробелов  ":            "много пробелов",
		"a:b:c":                           "a b c",
		"":                                "",
		":::":                             "",
	}
	for input, expected := range cases {
		if got := Normalize(input); got != expected {
			t.Fatalf("Normalize(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func TestKnowledgeBasePrefixMatch(t *testing.T) {
	files := []string{"Правило 3 ПОДТВЕРЖДЕНИЕ ЗАКАЗА.txt", "Правило 5 ДОСТАВКА.txt"}
	name, ok := KnowledgeBase("Правило 3: ПОДТВЕРЖДЕНИЕ ЗАКАЗА", files)
	if !ok {
		t.Fatalf("expected a match")
	}
	if name != "Правило 3 ПОДТВЕРЖДЕНИЕ ЗАКАЗА.txt" {
		t.Fatalf("unexpected match %q", name)
	}
}

func TestKnowledgeBaseTitleShorterThanFileName(t *testing.T) {
	files := []string{"Правило 5 ДОСТАВКА И ВОЗВРАТ.txt"}
	name, ok := KnowledgeBase("Правило 5: ДОСТАВКА", files)
	if !ok || name != "Правило 5 ДОСТАВКА И ВОЗВРАТ.txt" {
		t.Fatalf("expected prefix match on longer file name, got %q ok=%v", name, ok)
	}
}

func TestKnowledgeBaseFirstSortedWins(t *testing.T) {
	files := []string{"Rule 1 Intro.txt", "Rule 10 Advanced.txt"}
	name, ok := KnowledgeBase("Rule 1", files)
	if !ok || name != "Rule 1 Intro.txt" {
		t.Fatalf("expected first file in sorted order, got %q ok=%v", name, ok)
	}
}

func TestKnowledgeBaseNoMatch(t *testing.T) {
	files := []string{"Правило 1.txt"}
	if _, ok := KnowledgeBase("Несуществующее правило", files); ok {
		t.Fatalf("expected no match")
	}
	if _, ok := KnowledgeBase("Правило 1", nil); ok {
		t.Fatalf("expected no match against empty listing")
	}
	if _, ok := KnowledgeBase("", files); ok {
		t.Fatalf("expected empty query to never match")
	}
}

func TestAgentExactBeatsSubstring(t *testing.T) {
	files := []string{"billing_v2.txt", "billing.txt"}
	name, ok := Agent("billing", files)
	if !ok || name != "billing.txt" {
		t.Fatalf("expected exact match to win, got %q ok=%v", name, ok)
	}
}

func TestAgentSubstringFallback(t *testing.T) {
	files := []string{"cleaner_finance_handler.txt"}
	name, ok := Agent("finance", files)
	if !ok || name != "cleaner_finance_handler.txt" {
		t.Fatalf("expected substring match, got %q ok=%v", name, ok)
	}
}

func TestAgentCaseInsensitive(t *testing.T) {
	files := []string{"Cleaner_Finance_Handler.txt"}
	name, ok := Agent("cleaner_finance_handler", files)
	if !ok || name != "Cleaner_Finance_Handler.txt" {
		t.Fatalf("expected case-insensitive exact match, got %q ok=%v", name, ok)
	}
}

func TestAgentNoMatch(t *testing.T) {
	if _, ok := Agent("ghost", []string{"billing.txt"}); ok {
		t.Fatalf("expected no match")
	}
	if _, ok := Agent("ghost", nil); ok {
		t.Fatalf("expected no match against empty listing")
	}
	if _, ok := Agent("", []string{"billing.txt"}); ok {
		t.Fatalf("expected empty query to never match")
	}
}
