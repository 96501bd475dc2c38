package taskphoto

type AttachedEvent struct {
	Photo TaskPhoto
}
