package useragent

import (
	"fmt"
	"math/rand/v2"
)

var androidVersions = []string{"10", "11", "12", "13", "14"}

var androidDevices = []string{
	"SM-G991B", "SM-G996B", "SM-S901B", "SM-S911B", "SM-A536B", "SM-A546B",
	"Pixel 6", "Pixel 7", "Pixel 7 Pro", "Pixel 8",
	"M2101K6G", "2201116SG", "23049PCD8G", "CPH2451", "RMX3630",
}

var chromeMajors = []int{116, 117, 118, 119, 120, 121, 122, 123, 124}

// Generate возвращает случайный User-Agent мобильного Chrome на Android.
func Generate() string {
	android := androidVersions[rand.IntN(len(androidVersions))]
	device := androidDevices[rand.IntN(len(androidDevices))]
	major := chromeMajors[rand.IntN(len(chromeMajors))]
	build := 5000 + rand.IntN(1200)
	patch := rand.IntN(200)

	return fmt.Sprintf(
		"Mozilla/5.0 (Linux; Android %s; %s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.%d.%d Mobile Safari/537.36",
		android, device, major, build, patch,
	)
}
