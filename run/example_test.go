package run_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jonwraymond/debuggym/run"
)

func ExampleRunner() {
	// A task is a directory plus a test command. This one passes once
	// hello.txt holds the right greeting.
	dir, err := os.MkdirTemp("", "task")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)
	files := map[string]string{
		"hello.txt": "Hallo\n",
		"test.sh":   `grep -q Hello hello.txt && echo "1 passed" || { echo "1 failed"; exit 1; }` + "\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			log.Fatal(err)
		}
	}

	settings := run.Settings{
		Problem: "greeting",
		Env: run.EnvSettings{
			Path:       dir,
			Entrypoint: "sh test.sh",
		},
		Tools: []string{"rewrite", "eval"},
		Script: []run.Step{
			{Tool: "rewrite", Arguments: map[string]any{"path": "hello.txt", "new_code": "Hello"}},
			{Tool: "eval"},
		},
	}

	res, err := run.New(settings).Run(context.Background(), "rewrite_agent")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s solved=%v score=%d/%d steps=%d\n",
		res.Problem, res.Solved, res.Score, res.MaxScore, res.Steps)
	// Output:
	// greeting solved=true score=1/1 steps=2
}
