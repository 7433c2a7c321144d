package canonicalize

// Raw field aliases, each list in priority order. Sources disagree on
// naming; every alias a known source uses belongs here rather than in the
// normalization code.
var (
	titleKeys       = []string{"canonical_title", "title", "name", "label"}
	identifierKeys  = []string{"key", "matchKey", "match_key", "id"}
	tagKeys         = []string{"tags", "genres", "genre", "categories", "category"}
	playersMinKeys  = []string{"players_min", "min_players", "playersMin"}
	playersMaxKeys  = []string{"players_max", "max_players", "playersMax"}
	playersTextKeys = []string{"players", "player_count", "player_range"}

	flatPriceKeys    = []string{"price_lowest", "price", "sale_price", "current_price", "price_amount"}
	flatDiscountKeys = []string{"discount_percent", "discount", "discount_pct", "discountPercent", "sale_discount"}
	flatCurrencyKeys = []string{"currency", "price_currency", "price_lowest_currency", "currency_code"}
	entryPriceKeys   = []string{"price", "price_lowest", "amount"}
	entryDiscountKey = []string{"discount", "discount_percent"}
	storeURLKeys     = []string{"nintendo_url", "nintendoUrl", "url"}

	metascoreKeys        = []string{"metacritic_metascore", "metascore"}
	userscoreKeys        = []string{"metacritic_userscore", "userscore"}
	userscoreReviewKeys  = []string{"metacritic_userscore_reviews", "userscore_reviews"}
	popularityScoreKeys  = []string{"popularity", "popularity_score", "popularity_index"}
	popularityRankKeys   = []string{"popularity_rank", "rank"}
	totalRatingCountKeys = []string{"igdb_total_rating_count", "total_rating_count"}
	ratingCountKeys      = []string{"igdb_rating_count", "rating_count"}
	aggRatingCountKeys   = []string{"igdb_aggregated_rating_count", "aggregated_rating_count"}
	hypesKeys            = []string{"igdb_hypes", "hypes"}

	releaseTextKeys   = []string{"release_pretty", "release_date_display", "release_date"}
	releaseListKey    = "release_dates"
	releaseStampKeys  = []string{"release_timestamp"}
	imageSquareKeys   = []string{"image_square", "imageSquare", "image", "imageUrl", "image_url"}
	imageWideKeys     = []string{"image_wide", "imageWide"}
	metacriticURLKeys = []string{"metacritic_url", "metacriticUrl", "metacritic"}
	addedAtKeys       = []string{"added_at", "addedAt", "added"}
	nsuidKeys         = []string{"nsuid", "nsuid_txt"}

	demoFlagKeys  = []string{"is_demo"}
	cloudFlagKeys = []string{"is_cloud_version", "cloud"}
	nsoFlagKeys   = []string{"is_nso_app"}
)
