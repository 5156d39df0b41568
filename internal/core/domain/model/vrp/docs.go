// Package vrp holds the vehicle-routing problem exchanged with the route optimizer.
//
// Jobs and vehicles are built fresh for every dispatch cycle and discarded once the
// optimizer answer has been written as route stops. Ids are 1-based and unique only
// within one request. All locations are [longitude, latitude].
package vrp
