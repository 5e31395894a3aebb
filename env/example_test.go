package env_test

import (
	"fmt"

	"github.com/jonwraymond/debuggym/env"
	"github.com/jonwraymond/debuggym/gym"
)

func ExampleDefaultScore() {
	failed := gym.EvalOutput{Success: false, Output: "1 failed, 0 passed"}
	passed := gym.EvalOutput{Success: true, Output: "2 passed"}

	fmt.Println(env.DefaultScore(failed, 1))
	fmt.Println(env.DefaultScore(passed, 1))
	// Output:
	// 0
	// 1
}

func ExamplePytestScore() {
	out := gym.EvalOutput{
		Success: false,
		Output:  "collected 5 items\n\n3 passed, 2 failed in 0.12s",
	}

	fmt.Println(env.PytestScore(out, 5))
	fmt.Println(env.PytestScore(out, 2))
	// Output:
	// 3
	// 2
}
