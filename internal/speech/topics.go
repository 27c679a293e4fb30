package speech

import "fmt"

func TopicSpeak(prefix, kioskID string) string {
	return fmt.Sprintf("%s/%s/speak", prefix, kioskID)
}

func TopicState(prefix, kioskID string) string {
	return fmt.Sprintf("%s/%s/state", prefix, kioskID)
}
