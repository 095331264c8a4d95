/**
* Podds estimates fair betting odds for football matches from historical results.
*
* Historical match records are aggregated into per-team home/away goal averages,
* which feed an independent Poisson goals model. The model prices the
* Over/Under, favourite/underdog and both-teams-to-score markets and compares
* those fair prices against user supplied market odds.
 */
package podds

const (
	poddsAssetsPath = ".podds/"
	poddsDbPath     = poddsAssetsPath + "podds.db"
)
