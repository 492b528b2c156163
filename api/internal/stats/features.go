package stats

import "squad-tracker/api/internal/store"

// FeatureVector is the normalized input for the explanation model. Every
// field lives in a bounded range so prompt wording stays stable.
type FeatureVector struct {
	WRTogether      float64 `json:"wrTogether"`
	FriendKDALast3  float64 `json:"friendKdaLast3"`
	DeathsGap       float64 `json:"deathsGap"`
	RoleComboScore  float64 `json:"roleComboScore"`
	PartySizeNorm   float64 `json:"partySizeNorm"`
	GamesTogether   int     `json:"gamesTogether"`
	StatsConfidence float64 `json:"statsConfidence"`
}

// Features derives the vector from the friend's summary and their most
// recent shared matches (newest first, as ListByFriend returns them).
func Features(sum Summary, recent []store.MatchWithPlayers, friendID int64) FeatureVector {
	fv := FeatureVector{
		WRTogether:      sum.SynergyScore,
		GamesTogether:   sum.GamesTogether,
		StatsConfidence: sum.Confidence,
	}

	// Friend form over the last 3 shared games: (k + 0.5a) / max(d,1),
	// scaled so a 6.0 ratio maps to 1.0.
	var k, d, a, ownerDeaths, friendDeaths, n float64
	for _, m := range recent {
		row, ok := friendRow(m.Players, friendID)
		if !ok || !row.IsOwnerParty {
			continue
		}
		if n < 3 {
			k += float64(row.Kills)
			d += float64(row.Deaths)
			a += float64(row.Assists)
			friendDeaths += float64(row.Deaths)
			ownerDeaths += ownerAvgDeaths(m.Players)
			n++
		}
	}
	if n > 0 {
		denom := d
		if denom < 1 {
			denom = 1
		}
		fv.FriendKDALast3 = (k + 0.5*a) / denom / 6
		if fv.FriendKDALast3 > 1 {
			fv.FriendKDALast3 = 1
		}

		fv.DeathsGap = (ownerDeaths/n - friendDeaths/n) / 10
		if fv.DeathsGap > 1 {
			fv.DeathsGap = 1
		}
		if fv.DeathsGap < -1 {
			fv.DeathsGap = -1
		}
	}

	// Role data is not on the scoreboard yet; the field is reserved.
	fv.RoleComboScore = 0

	if len(recent) > 0 {
		fv.PartySizeNorm = float64(recent[0].PartySize) / 5
	} else {
		fv.PartySizeNorm = 0.6
	}
	return fv
}

func ownerAvgDeaths(players []store.MatchPlayer) float64 {
	var deaths, n float64
	for _, p := range players {
		if p.IsOwnerParty {
			deaths += float64(p.Deaths)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return deaths / n
}
