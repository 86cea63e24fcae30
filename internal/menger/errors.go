package menger

import "errors"

var (
	// ErrInvalidLevel is returned for negative levels
	ErrInvalidLevel = errors.New("menger: invalid level")
	// ErrLevelTooHigh is returned when a level would exceed the configured geometry budget
	ErrLevelTooHigh = errors.New("menger: level exceeds geometry limit")
	// ErrInvalidOption is returned by NewSponge for bad options
	ErrInvalidOption = errors.New("menger: invalid option")
	// ErrInvalidFloor is returned by NewFloor for a non-positive extent, tile size or stride
	ErrInvalidFloor = errors.New("menger: invalid floor config")
	// ErrFloorTooLarge is returned when a floor would exceed MaxFloorTiles
	ErrFloorTooLarge = errors.New("menger: floor exceeds geometry limit")
)
