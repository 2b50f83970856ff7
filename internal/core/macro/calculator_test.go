package macro

import "testing"

func TestCalculate(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want Macros
	}{
		{
			// BMR = 10*80 + 6.25*180 - 5*30 + 5 = 1780；久坐 ×1.2 = 2136
			name: "male maintain sedentary",
			in:   Input{Age: 30, Gender: "male", Height: 180, Weight: 80, ActivityLevel: "sedentary", Goal: "maintain"},
			want: Macros{Calories: 2136, Protein: 160, Carbs: 240, Fat: 59},
		},
		{
			// BMR = 10*60 + 6.25*165 - 5*25 - 161 = 1345.25；中等 ×1.55 = 2085.1375，減重 -300
			name: "female lose moderate",
			in:   Input{Age: 25, Gender: "female", Height: 165, Weight: 60, ActivityLevel: "moderate", Goal: "lose"},
			want: Macros{Calories: 1785, Protein: 134, Carbs: 201, Fat: 50},
		},
		{
			// BMR = 10*90 + 6.25*175 - 5*40 + 5 = 1798.75；未知活動量退回久坐 ×1.2，增重 +300
			name: "gain with unknown activity",
			in:   Input{Age: 40, Gender: "MALE", Height: 175, Weight: 90, ActivityLevel: "extreme", Goal: "gain"},
			want: Macros{Calories: 2459, Protein: 184, Carbs: 277, Fat: 68},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.in)
			if got != tt.want {
				t.Fatalf("Calculate(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
