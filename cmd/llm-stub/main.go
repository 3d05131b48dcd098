// Command llm-stub is a tiny OpenAI-compatible server for trying gamedoc
// without a real model. It answers each pipeline stage with deterministic
// content and rejects the first APPROVE_AFTER-1 reviews so the refine loop can
// be exercised end to end.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}
	approveAfter := 1
	if n, err := strconv.Atoi(os.Getenv("APPROVE_AFTER")); err == nil && n > 0 {
		approveAfter = n
	}

	var (
		mu      sync.Mutex
		reviews int
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		sys, user := "", ""
		if len(req.Messages) > 0 {
			sys = strings.TrimSpace(req.Messages[0].Content)
		}
		if len(req.Messages) > 1 {
			user = req.Messages[1].Content
		}

		var content string
		switch {
		case strings.Contains(sys, "content analyzer"):
			content = summaryJSON(user)
		case strings.Contains(sys, "game design architect"):
			content = gameJSON(gameTypeOf(user), "Draft")
		case strings.Contains(sys, "content reviewer"):
			mu.Lock()
			reviews++
			n := reviews
			mu.Unlock()
			if n < approveAfter {
				content = `{"approved": false, "feedback": "Definition ` + strconv.Itoa(n) + ` is too vague; tie it to the source text."}`
			} else {
				content = `{"approved": true, "feedback": "Content is accurate and well matched to the summary."}`
			}
		case strings.Contains(sys, "content refiner"):
			content = gameJSON(gameTypeOf(user), "Refined")
		default:
			http.Error(w, "unexpected system", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})

	log.Printf("llm-stub listening on %s (model=%s, approve after %d reviews)", addr, model, approveAfter)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

// summaryJSON fabricates an analyzer reply, echoing the document title from
// the prompt when one is present.
func summaryJSON(user string) string {
	topic := "Stub Topic"
	for _, line := range strings.Split(user, "\n") {
		if t, ok := strings.CutPrefix(strings.TrimSpace(line), "Document title: "); ok && t != "" {
			topic = t
			break
		}
	}
	b, _ := json.Marshal(map[string]any{
		"topic":               topic,
		"subject_area":        "General studies",
		"key_concepts":        []string{"Concept one", "Concept two", "Concept three"},
		"facts":               []string{"Fact one is stated in the document.", "Fact two is stated in the document."},
		"learning_objectives": []string{"Recall the key concepts.", "Connect facts to concepts."},
	})
	return string(b)
}

// gameTypeOf sniffs the requested game type from either an architect prompt
// ("Design a matching game") or a refiner prompt (embedded structure JSON).
func gameTypeOf(user string) string {
	for _, gt := range []string{"matching", "quiz", "flashcards"} {
		if strings.Contains(user, "Design a "+gt+" game") {
			return gt
		}
		if strings.Contains(user, `"game_type": "`+gt+`"`) {
			return gt
		}
	}
	return "matching"
}

func gameJSON(gt string, prefix string) string {
	game := map[string]any{
		"game_type":   gt,
		"title":       prefix + " " + strings.ToUpper(gt[:1]) + gt[1:] + " Game",
		"theme_color": "#4a90d9",
	}
	switch gt {
	case "quiz":
		qs := make([]map[string]any, 0, 10)
		for i := 1; i <= 10; i++ {
			qs = append(qs, map[string]any{
				"question":    fmt.Sprintf("Question %d about the material?", i),
				"options":     []string{"Right answer", "Wrong answer", "Other wrong answer", "Distractor"},
				"correct":     0,
				"explanation": fmt.Sprintf("Answer %d follows from the summary.", i),
			})
		}
		game["questions"] = qs
	case "flashcards":
		cards := make([]map[string]any, 0, 12)
		for i := 1; i <= 12; i++ {
			cards = append(cards, map[string]any{
				"front": fmt.Sprintf("Prompt %d", i),
				"back":  fmt.Sprintf("Answer %d from the source material.", i),
			})
		}
		game["cards"] = cards
	default:
		pairs := make([]map[string]any, 0, 8)
		for i := 1; i <= 8; i++ {
			pairs = append(pairs, map[string]any{
				"term":       fmt.Sprintf("Term %d", i),
				"definition": fmt.Sprintf("Definition %d from the source material.", i),
			})
		}
		game["pairs"] = pairs
	}
	b, _ := json.Marshal(game)
	return string(b)
}
