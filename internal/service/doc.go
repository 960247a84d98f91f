// Package service contains the client's application services that sit between
// the API client and the front end.
//
// WordService looks words up and adds them to the study list, announcing each
// successful add. RefreshCoordinator holds the latest aggregate stats and
// re-fetches them whenever an event says the user's data changed.
//
// Services receive their collaborators through constructor injection and
// depend on small consumer-side interfaces rather than on *api.Client.
package service
