package chain

// ABI fragments for the paca.finance staking contract and its helper,
// restricted to the functions and events the keeper uses.

const stakingContractABI = `[
  {"type":"function","name":"viewAllRewards","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"minimumClaimAmount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"minimumCompoundAmount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"totalAmountDeposited","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getPoolDailyRewardRate","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getStakes","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"originalAmount","type":"uint256"},{"name":"startTime","type":"uint256"}]}]},
  {"type":"function","name":"claimAllRewards","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"compoundAllRewards","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"event","name":"Claimed","anonymous":false,"inputs":[{"name":"account","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
  {"type":"event","name":"RewardsCompounded","anonymous":false,"inputs":[{"name":"account","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]}
]`

const helperContractABI = `[
  {"type":"function","name":"getDailyEarnings","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"dailyRewardRate","type":"uint256"},{"name":"stakedAmount","type":"uint256"},{"name":"dailyEarnings","type":"uint256"}]}
]`
