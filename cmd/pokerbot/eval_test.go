package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/lox/pokerbots/poker"
)

func TestEvaluateRanksHands(t *testing.T) {
	rows, err := evaluate([]string{"2c 3d", "Ah Ad", "Kh Kd", "As Ac"}, "7s 8h 9c Jd 4h")
	if err != nil {
		t.Fatal(err)
	}

	var places []int
	var inputs []string
	for _, r := range rows {
		places = append(places, r.Place)
		inputs = append(inputs, r.Input)
	}
	if got := strings.Join(inputs, ","); got != "Ah Ad,As Ac,Kh Kd,2c 3d" {
		t.Errorf("unexpected order %s", got)
	}
	if places[0] != 1 || places[1] != 1 || places[2] != 3 || places[3] != 4 {
		t.Errorf("unexpected places %v", places)
	}
	if rows[0].Key.Category() != poker.Pair {
		t.Errorf("expected a pair, got %s", rows[0].Key)
	}
}

func TestEvaluateErrors(t *testing.T) {
	if _, err := evaluate([]string{"Ah Kd"}, ""); !errors.Is(err, poker.ErrInsufficientCards) {
		t.Errorf("expected ErrInsufficientCards, got %v", err)
	}
	if _, err := evaluate([]string{"Ah Zz Qs Jc Tc"}, ""); err == nil {
		t.Error("expected a parse error")
	}
	if _, err := evaluate([]string{"Ah Kd"}, "Ah 2c 3d"); !errors.Is(err, poker.ErrDuplicateCard) {
		t.Errorf("expected ErrDuplicateCard, got %v", err)
	}
}

func TestPrintEvalShowsDraws(t *testing.T) {
	rows, err := evaluate([]string{"Ah 5h"}, "Kh 9h 2c")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	printEval(&buf, rows, "Kh 9h 2c")
	if !strings.Contains(buf.String(), "nut flush draw") {
		t.Errorf("expected draw output, got:\n%s", buf.String())
	}
}
