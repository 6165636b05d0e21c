// Command snapsort watches a folder for incoming photos and organizes them
// into dated subject folders when a QR trigger photo arrives.
package main
