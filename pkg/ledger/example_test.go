package ledger_test

import (
	"fmt"

	"github.com/Sumatoshi-tech/roadsplit/pkg/ledger"
)

func ExampleLedger_TotalCost() {
	l, err := ledger.New([]int64{5, 3})
	if err != nil {
		fmt.Println(err)

		return
	}

	// From day 10 onward section 0 costs 8 per day.
	err = l.Append(0, 10, 8)
	if err != nil {
		fmt.Println(err)

		return
	}

	before, _ := l.TotalCost(0, 0, 9)
	through, _ := l.TotalCost(0, 0, 10)
	fmt.Println(before, through)
	// Output: 50 58
}
