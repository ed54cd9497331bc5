package judgerun_test

import (
	"context"
	"fmt"
	"log"

	judgerun "github.com/gsarma/judgerun/sdk"
)

func Example_basicUsage() {
	ctx := context.Background()
	client := judgerun.New("http://localhost:8080", "local-token")

	// --- Pick the language and store the judge API key ---
	if _, err := client.Settings.Update(ctx, judgerun.Settings{Language: "python", APIKey: "your-judge0-key"}); err != nil {
		log.Fatal(err)
	}

	// --- Load test cases ---
	_, err := client.TestCases.Load(ctx, []judgerun.TestCaseInput{
		{Input: "1 2", ExpectedOutput: "3"},
		{Input: "3 4", ExpectedOutput: "7"},
	})
	if err != nil {
		log.Fatal(err)
	}

	// --- Run ---
	resp, err := client.Runs.Run(ctx, judgerun.RunRequest{Code: "a, b = map(int, input().split())\nprint(a + b)"})
	if judgerun.IsRateLimited(err) {
		log.Fatal("judge rate limit reached, try again later")
	}
	if err != nil {
		log.Fatal(err)
	}
	for i, tc := range resp.TestCases {
		fmt.Printf("#%d %s %ss %sMB\n", i+1, tc.Output, tc.Time, tc.Memory)
	}
	fmt.Println("All passed:", resp.AllPassed)
}
