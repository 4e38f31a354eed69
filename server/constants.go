package server

const (
	// routeAPI describes base api prefix.
	routeAPI = "/api/v1"
	// routePublic describes prefix which is available without surface.
	routePublic = "/pub"
	// routeSurface describes remote surface websocket.
	routeSurface = "/ws/surface"
)

const (
	// Display frame with presentation.
	frameTypePresentation = "presentation"
	// Display frame with turn log.
	frameTypeTurns = "turns"
)

const (
	// Display input: any interaction.
	inputActivity = "activity"
	// Display input: pointer down.
	inputPress = "press"
	// Display input: pointer up.
	inputRelease = "release"
	// Display input: viewport change.
	inputResize = "resize"
)
